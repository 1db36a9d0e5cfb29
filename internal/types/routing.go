package types

import "time"

// ConditionType enumerates the supported routing condition evaluators
type ConditionType string

const (
	CondIntentConfidence ConditionType = "intent_confidence"
	CondSentiment        ConditionType = "sentiment"
	CondComplexity       ConditionType = "complexity"
	CondUrgency          ConditionType = "urgency"
	CondKeywords         ConditionType = "keywords"
	CondUserHistory      ConditionType = "user_history"
	CondTime             ConditionType = "time"
	CondChannel          ConditionType = "channel"
	CondLanguage         ConditionType = "language"
)

// ConditionOperator enumerates comparison operators for routing conditions
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
)

// RoutingCondition is one weighted predicate inside a routing rule.
// Exactly one of Value/Number/Keywords is meaningful depending on Type.
type RoutingCondition struct {
	Type     ConditionType     `json:"type"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value,omitempty"`
	Number   float64           `json:"number,omitempty"`
	Keywords []string          `json:"keywords,omitempty"`
	Weight   float64           `json:"weight"`
}

// RoutingRule is a named escalation policy. Rules are configuration,
// loaded once at startup and never mutated afterwards. Evaluation order
// is declaration order; Priority only feeds urgency derivation.
type RoutingRule struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Conditions     []RoutingCondition `json:"conditions"`
	Priority       int                `json:"priority"`
	TargetAgents   []string           `json:"targetAgents"`
	FallbackAgents []string           `json:"fallbackAgents"`
	EscalationTime int                `json:"escalationTime"` // minutes
	Reason         string             `json:"reason"`
	IsActive       bool               `json:"isActive"`
}

// RoutingDecision is the derived output of one routing evaluation.
// It is never persisted; the orchestrator acts on it immediately.
type RoutingDecision struct {
	ShouldEscalate    bool         `json:"shouldEscalate"`
	Confidence        float64      `json:"confidence"`
	RecommendedAgent  *Agent       `json:"recommendedAgent,omitempty"`
	AlternativeAgents []Agent      `json:"alternativeAgents"`
	Reason            string       `json:"reason"`
	Urgency           UrgencyLevel `json:"urgency"`
	EstimatedWaitMins int          `json:"estimatedWaitTime"`
	Rule              *RoutingRule `json:"routingRule,omitempty"`
}

// TransferStatus is the lifecycle state of a conversation transfer
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferAccepted  TransferStatus = "accepted"
	TransferRejected  TransferStatus = "rejected"
	TransferCompleted TransferStatus = "completed"
)

// TransferInitiator identifies who triggered a transfer
type TransferInitiator string

const (
	InitiatedBySystem TransferInitiator = "system"
	InitiatedByUser   TransferInitiator = "user"
	InitiatedByAgent  TransferInitiator = "agent"
)

// CustomerFeedback is optional post-transfer feedback from the customer
type CustomerFeedback struct {
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

// ConversationTransfer tracks handing a conversation from the bot (or an
// agent) to a target agent. State machine: pending -> accepted|rejected,
// accepted -> completed.
type ConversationTransfer struct {
	ID               string            `json:"id"`
	ConversationID   string            `json:"conversationId"`
	FromAgent        string            `json:"fromAgent,omitempty"` // empty means bot
	ToAgent          string            `json:"toAgent"`
	Reason           string            `json:"reason"`
	InitiatedBy      TransferInitiator `json:"initiatedBy"`
	TransferType     string            `json:"transferType"`
	Timestamp        time.Time         `json:"timestamp"`
	ResolvedAt       *time.Time        `json:"resolvedAt,omitempty"`
	Status           TransferStatus    `json:"status"`
	Notes            string            `json:"notes,omitempty"`
	CustomerFeedback *CustomerFeedback `json:"customerFeedback,omitempty"`
}
