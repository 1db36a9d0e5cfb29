package types

// ConversationRecord represents a finished conversation for DynamoDB persistence
type ConversationRecord struct {
	DateKey      string  `json:"dateKey" dynamodbav:"DateKey"`     // YYYY-MM-DD (partition key)
	SessionID    string  `json:"sessionId" dynamodbav:"SessionID"` // sort key
	UserID       string  `json:"userId" dynamodbav:"UserID"`
	Flow         string  `json:"flow" dynamodbav:"Flow"`
	FinalIntent  string  `json:"finalIntent" dynamodbav:"FinalIntent"`
	StepsReached int     `json:"stepsReached" dynamodbav:"StepsReached"`
	Completed    bool    `json:"completed" dynamodbav:"Completed"`
	Escalated    bool    `json:"escalated" dynamodbav:"Escalated"`
	TurnCount    int     `json:"turnCount" dynamodbav:"TurnCount"`
	StartedAt    string  `json:"startedAt" dynamodbav:"StartedAt"` // RFC3339
	EndedAt      string  `json:"endedAt" dynamodbav:"EndedAt"`     // RFC3339
	DurationSecs float64 `json:"durationSecs" dynamodbav:"DurationSecs"`
}

// TransferRecord represents a finished transfer for DynamoDB persistence
type TransferRecord struct {
	DateKey        string  `json:"dateKey" dynamodbav:"DateKey"`       // YYYY-MM-DD (partition key)
	TransferID     string  `json:"transferId" dynamodbav:"TransferID"` // sort key
	ConversationID string  `json:"conversationId" dynamodbav:"ConversationID"`
	ToAgent        string  `json:"toAgent" dynamodbav:"ToAgent"`
	Reason         string  `json:"reason" dynamodbav:"Reason"`
	InitiatedBy    string  `json:"initiatedBy" dynamodbav:"InitiatedBy"`
	Status         string  `json:"status" dynamodbav:"Status"`
	InitiatedAt    string  `json:"initiatedAt" dynamodbav:"InitiatedAt"`   // RFC3339
	ResolvedAt     string  `json:"resolvedAt" dynamodbav:"ResolvedAt"`     // RFC3339
	WaitEstimate   int     `json:"waitEstimate" dynamodbav:"WaitEstimate"` // minutes
	Satisfaction   float64 `json:"satisfaction" dynamodbav:"Satisfaction"` // 0 when no feedback
}
