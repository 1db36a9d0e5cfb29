package conversation

import (
	"sync"
	"time"

	"github.com/modernmen/concierge/internal/types"
	"github.com/rs/zerolog"
)

// RecordStore is the subset of storage.Store needed by the Manager
type RecordStore interface {
	SaveConversationRecord(record types.ConversationRecord) error
}

// Manager owns per-session dialogue state. All mutating operations on an
// unknown session return nil/false rather than an error; callers treat
// that as "session expired" and re-create or report.
type Manager struct {
	contexts map[string]*Context
	flows    map[string]func() *Flow
	store    RecordStore
	mu       sync.RWMutex
	logger   zerolog.Logger
}

// NewManager creates a new conversation manager with the default flows registered
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		contexts: make(map[string]*Context),
		flows: map[string]func() *Flow{
			"booking": NewBookingFlow,
		},
		logger: logger.With().Str("component", "conversation").Logger(),
	}
}

// SetStore sets the persistence store for finished conversation records
func (m *Manager) SetStore(store RecordStore) {
	m.store = store
}

// CreateContext initializes a fresh context bound to the default booking
// flow. Always succeeds; an existing context for the session is overwritten.
func (m *Manager) CreateContext(sessionID, userID string) *Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	flow := m.newFlow("booking")
	now := time.Now()
	ctx := &Context{
		SessionID:     sessionID,
		UserID:        userID,
		CurrentIntent: "greeting",
		State: State{
			Step:         0,
			TotalSteps:   len(flow.Steps),
			IsComplete:   false,
			IsActive:     true,
			LastActivity: now,
			Flow:         flow,
		},
		Entities: make(map[string]string),
		History:  make([]HistoryItem, 0),
		Metadata: Metadata{
			Source:   "text",
			Platform: "web",
			Language: "en-US",
			Timezone: now.Location().String(),
		},
		Preferences: Preferences{
			CommunicationStyle: "casual",
			Language:           "en-US",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.contexts[sessionID] = ctx
	m.logger.Debug().Str("session_id", sessionID).Str("user_id", userID).Msg("context created")
	return copyContext(ctx)
}

// GetContext returns a copy of the context for a session, or nil if unknown
func (m *Manager) GetContext(sessionID string) *Context {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ctx, ok := m.contexts[sessionID]
	if !ok {
		return nil
	}
	return copyContext(ctx)
}

// UpdateContext applies a partial update, refreshing UpdatedAt and
// LastActivity. Returns nil if the session is unknown.
func (m *Manager) UpdateContext(sessionID string, update ContextUpdate) *Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, ok := m.contexts[sessionID]
	if !ok {
		return nil
	}

	if update.CurrentIntent != nil {
		ctx.CurrentIntent = *update.CurrentIntent
	}
	if update.UserID != nil {
		ctx.UserID = *update.UserID
	}
	if update.IsActive != nil {
		ctx.State.IsActive = *update.IsActive
	}
	if update.Metadata != nil {
		ctx.Metadata = *update.Metadata
	}
	if update.Preferences != nil {
		ctx.Preferences = *update.Preferences
	}

	now := time.Now()
	ctx.UpdatedAt = now
	ctx.State.LastActivity = now

	return copyContext(ctx)
}

// AddMessage records a turn: snapshots pre-turn state into history, updates
// the current intent, merges extracted entities (last write wins per key),
// derives action tags and advances flow progress. Returns false if the
// session is unknown; no mutation happens in that case.
func (m *Manager) AddMessage(sessionID string, msg types.Message, analysis types.NLPAnalysis) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, ok := m.contexts[sessionID]
	if !ok {
		return false
	}

	item := HistoryItem{
		ID:        msg.ID,
		Message:   msg,
		Analysis:  analysis,
		Timestamp: time.Now(),
		Snapshot: Snapshot{
			Intent:   ctx.CurrentIntent,
			Entities: copyEntities(ctx.Entities),
			Step:     ctx.State.Step,
			Complete: ctx.State.IsComplete,
		},
		Actions: extractActions(analysis),
	}

	ctx.History = append(ctx.History, item)
	now := time.Now()
	ctx.UpdatedAt = now
	ctx.State.LastActivity = now

	ctx.CurrentIntent = analysis.Intent.Name
	for k, v := range analysis.Intent.Entities {
		ctx.Entities[k] = v
	}

	m.advanceFlow(ctx)
	return true
}

// GetCurrentStep returns the step at the flow cursor, or nil when the flow
// is exhausted or the session is unknown.
func (m *Manager) GetCurrentStep(sessionID string) *FlowStep {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ctx, ok := m.contexts[sessionID]
	if !ok {
		return nil
	}

	flow := ctx.State.Flow
	if flow.Cursor >= len(flow.Steps) {
		return nil
	}
	step := flow.Steps[flow.Cursor]
	return &step
}

// SetFlowVariable writes into the flow's variable bag. Returns false if the
// session is unknown.
func (m *Manager) SetFlowVariable(sessionID, key, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, ok := m.contexts[sessionID]
	if !ok {
		return false
	}
	ctx.State.Flow.Variables[key] = value
	return true
}

// GetFlowVariable reads from the flow's variable bag
func (m *Manager) GetFlowVariable(sessionID, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ctx, ok := m.contexts[sessionID]
	if !ok {
		return "", false
	}
	value, ok := ctx.State.Flow.Variables[key]
	return value, ok
}

// ResetFlow rewinds the cursor to the first step and clears completion and
// the entity bag. History is preserved.
func (m *Manager) ResetFlow(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, ok := m.contexts[sessionID]
	if !ok {
		return false
	}

	ctx.State.Flow.Cursor = 0
	ctx.State.Step = 0
	ctx.State.IsComplete = false
	ctx.Entities = make(map[string]string)
	return true
}

// EndSession marks a session inactive. The context is retained for
// analytics until the cleanup sweep removes it.
func (m *Manager) EndSession(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, ok := m.contexts[sessionID]
	if !ok {
		return false
	}
	ctx.State.IsActive = false

	if m.store != nil {
		record := contextToRecord(ctx)
		go func() {
			if err := m.store.SaveConversationRecord(record); err != nil {
				m.logger.Error().Err(err).Str("session_id", record.SessionID).Msg("failed to save conversation record")
			}
		}()
	}

	m.logger.Debug().Str("session_id", sessionID).Msg("session ended")
	return true
}

// ActiveContexts returns copies of all contexts still marked active
func (m *Manager) ActiveContexts() []*Context {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Context, 0, len(m.contexts))
	for _, ctx := range m.contexts {
		if ctx.State.IsActive {
			result = append(result, copyContext(ctx))
		}
	}
	return result
}

// ContextsByUser returns copies of all contexts belonging to a user
func (m *Manager) ContextsByUser(userID string) []*Context {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Context, 0)
	for _, ctx := range m.contexts {
		if ctx.UserID == userID {
			result = append(result, copyContext(ctx))
		}
	}
	return result
}

// CleanupInactive removes contexts that are inactive and whose last
// activity is older than maxAge. Active sessions are retained regardless
// of age. Returns the number removed.
func (m *Manager) CleanupInactive(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, ctx := range m.contexts {
		if !ctx.State.IsActive && ctx.State.LastActivity.Before(cutoff) {
			delete(m.contexts, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("cleaned up inactive contexts")
	}
	return removed
}

// Stats is an aggregate view over all tracked conversations
type Stats struct {
	TotalConversations  int           `json:"totalConversations"`
	ActiveConversations int           `json:"activeConversations"`
	CompletedFlows      int           `json:"completedFlows"`
	AvgCompletionTime   time.Duration `json:"averageCompletionTime"`
}

// GetStats returns conversation counts and the mean completion latency over
// completed contexts with at least one recorded turn.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{TotalConversations: len(m.contexts)}

	var totalCompletion time.Duration
	var measured int
	for _, ctx := range m.contexts {
		if ctx.State.IsActive {
			stats.ActiveConversations++
		}
		if ctx.State.IsComplete {
			stats.CompletedFlows++
			if len(ctx.History) > 0 {
				totalCompletion += ctx.UpdatedAt.Sub(ctx.CreatedAt)
				measured++
			}
		}
	}
	if measured > 0 {
		stats.AvgCompletionTime = totalCompletion / time.Duration(measured)
	}

	return stats
}

// advanceFlow moves the cursor past the current step when its validation is
// satisfied, capped at the last step. The final step is never auto-advanced
// past; its own action execution closes the flow.
func (m *Manager) advanceFlow(ctx *Context) {
	flow := ctx.State.Flow
	if len(flow.Steps) == 0 {
		return
	}

	if flow.Cursor < len(flow.Steps)-1 {
		if stepComplete(flow.Steps[flow.Cursor], ctx) {
			flow.Cursor++
			ctx.State.Step = flow.Cursor
		}
	}

	ctx.State.IsComplete = flow.Cursor >= len(flow.Steps)-1
}

// stepComplete checks a step's validation rule against the entity bag.
// The step ID is the entity key.
func stepComplete(step FlowStep, ctx *Context) bool {
	if step.Validation == nil {
		return true
	}

	value, present := ctx.Entities[step.ID]
	switch step.Validation.Type {
	case ValidationRequired:
		return present
	case ValidationPattern:
		return present && step.Validation.Pattern != nil && step.Validation.Pattern.MatchString(value)
	default:
		return true
	}
}

// extractActions derives coarse action tags from the analysis
func extractActions(analysis types.NLPAnalysis) []string {
	actions := make([]string, 0, 4)

	if analysis.Intent.Name == "booking" {
		actions = append(actions, "initiate_booking_flow")
	}
	if _, ok := analysis.Intent.Entities["service"]; ok {
		actions = append(actions, "service_selected")
	}
	if _, ok := analysis.Intent.Entities["date"]; ok {
		actions = append(actions, "date_selected")
	}
	if _, ok := analysis.Intent.Entities["time"]; ok {
		actions = append(actions, "time_selected")
	}

	return actions
}

func (m *Manager) newFlow(name string) *Flow {
	if build, ok := m.flows[name]; ok {
		return build()
	}
	return newEmptyFlow()
}

func copyEntities(entities map[string]string) map[string]string {
	out := make(map[string]string, len(entities))
	for k, v := range entities {
		out[k] = v
	}
	return out
}

// copyContext returns a caller-safe copy. History, entities and flow
// variables are copied; flow steps are shared immutable templates.
func copyContext(ctx *Context) *Context {
	out := *ctx
	out.Entities = copyEntities(ctx.Entities)
	out.History = append([]HistoryItem(nil), ctx.History...)
	flow := *ctx.State.Flow
	flow.Variables = copyEntities(ctx.State.Flow.Variables)
	out.State.Flow = &flow
	return &out
}

// contextToRecord converts a finished context to a persistence record
func contextToRecord(ctx *Context) types.ConversationRecord {
	escalated := false
	for _, item := range ctx.History {
		if item.Analysis.Urgency == types.UrgencyHigh || item.Analysis.Sentiment == types.SentimentNegative {
			escalated = true
			break
		}
	}

	return types.ConversationRecord{
		DateKey:      ctx.CreatedAt.Format("2006-01-02"),
		SessionID:    ctx.SessionID,
		UserID:       ctx.UserID,
		Flow:         ctx.State.Flow.Name,
		FinalIntent:  ctx.CurrentIntent,
		StepsReached: ctx.State.Step,
		Completed:    ctx.State.IsComplete,
		Escalated:    escalated,
		TurnCount:    len(ctx.History),
		StartedAt:    ctx.CreatedAt.Format(time.RFC3339),
		EndedAt:      ctx.UpdatedAt.Format(time.RFC3339),
		DurationSecs: ctx.UpdatedAt.Sub(ctx.CreatedAt).Seconds(),
	}
}
