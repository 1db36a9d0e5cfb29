package conversation

import (
	"time"

	"github.com/modernmen/concierge/internal/types"
)

// State tracks flow progression for a context. Step always mirrors the
// flow cursor; IsComplete is derived from cursor position, never set
// independently.
type State struct {
	Step         int       `json:"step"`
	TotalSteps   int       `json:"totalSteps"`
	IsComplete   bool      `json:"isComplete"`
	IsActive     bool      `json:"isActive"`
	LastActivity time.Time `json:"lastActivity"`
	Flow         *Flow     `json:"-"`
}

// Snapshot is the pre-turn state captured into each history item
type Snapshot struct {
	Intent   string            `json:"intent"`
	Entities map[string]string `json:"entities"`
	Step     int               `json:"step"`
	Complete bool              `json:"complete"`
}

// HistoryItem is one recorded turn. The snapshot reflects context state
// before the turn's effects were applied.
type HistoryItem struct {
	ID        string            `json:"id"`
	Message   types.Message     `json:"message"`
	Analysis  types.NLPAnalysis `json:"analysis"`
	Timestamp time.Time         `json:"timestamp"`
	Snapshot  Snapshot          `json:"contextSnapshot"`
	Actions   []string          `json:"actions"`
}

// Metadata is descriptive, non-authoritative session info
type Metadata struct {
	Source   string `json:"source"`   // text, voice, widget, api
	Platform string `json:"platform"` // web, mobile, api
	Language string `json:"language"`
	Timezone string `json:"timezone"`
}

// Preferences holds non-authoritative user preferences
type Preferences struct {
	CommunicationStyle string   `json:"communicationStyle"`
	PreferredTimes     []string `json:"preferredTimes"`
	FavoriteServices   []string `json:"favoriteServices"`
	Language           string   `json:"language"`
}

// Context is the single source of truth for one session's dialogue state
type Context struct {
	SessionID     string            `json:"sessionId"`
	UserID        string            `json:"userId,omitempty"`
	CurrentIntent string            `json:"currentIntent"`
	State         State             `json:"conversationState"`
	Entities      map[string]string `json:"entities"`
	History       []HistoryItem     `json:"history"`
	Metadata      Metadata          `json:"metadata"`
	Preferences   Preferences       `json:"preferences"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// ContextUpdate is a partial update applied by Manager.UpdateContext.
// Nil fields are left untouched.
type ContextUpdate struct {
	CurrentIntent *string
	UserID        *string
	IsActive      *bool
	Metadata      *Metadata
	Preferences   *Preferences
}
