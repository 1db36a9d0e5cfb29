package types

import "time"

// Sentiment is the NLP-detected sentiment of a message
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// UrgencyLevel is the NLP-detected urgency of a message
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)

// MessageSender identifies who produced a chat message
type MessageSender string

const (
	SenderUser  MessageSender = "user"
	SenderBot   MessageSender = "bot"
	SenderAgent MessageSender = "agent"
)

// Message is a single inbound chat message as delivered by the transport layer
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Content   string            `json:"content"`
	Sender    MessageSender     `json:"sender"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Intent is the classified intent of a message
type Intent struct {
	Name       string            `json:"name"`
	Confidence float64           `json:"confidence"` // 0-1
	Entities   map[string]string `json:"entities"`
}

// AnalysisContext carries topic-level context from the NLP analyzer
type AnalysisContext struct {
	Topic string `json:"topic"`
}

// NLPAnalysis is the analyzer output for a single message.
// Produced by the external NLP service, consumed by the conversation
// manager and the routing engine.
type NLPAnalysis struct {
	Intent    Intent          `json:"intent"`
	Sentiment Sentiment       `json:"sentiment"`
	Urgency   UrgencyLevel    `json:"urgency"`
	Context   AnalysisContext `json:"context"`
}

// AgentStatus represents the live availability of a human agent
type AgentStatus string

const (
	AgentOnline  AgentStatus = "online"
	AgentOffline AgentStatus = "offline"
	AgentBusy    AgentStatus = "busy"
	AgentAway    AgentStatus = "away"
)

// AgentPerformance contains rolling performance metrics for an agent
type AgentPerformance struct {
	ResolvedConversations int     `json:"resolvedConversations"`
	AvgResolutionTime     float64 `json:"avgResolutionTime"`    // minutes
	CustomerSatisfaction  float64 `json:"customerSatisfaction"` // 1-5
	TransferRate          float64 `json:"transferRate"`         // 0-1
}

// Agent is a human agent directory entry
type Agent struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Email                string           `json:"email"`
	Status               AgentStatus      `json:"status"`
	Skills               []string         `json:"skills"`
	Languages            []string         `json:"languages"`
	Specialties          []string         `json:"specialties"`
	Experience           int              `json:"experience"` // years
	Rating               float64          `json:"rating"`     // 1-5
	CurrentConversations int              `json:"currentConversations"`
	MaxConversations     int              `json:"maxConcurrentConversations"`
	ResponseTime         float64          `json:"responseTime"` // average minutes
	LastActivity         time.Time        `json:"lastActivity"`
	Performance          AgentPerformance `json:"performance"`
}

// Available reports whether the agent can take another conversation
func (a *Agent) Available() bool {
	return a.Status == AgentOnline && a.CurrentConversations < a.MaxConversations
}
