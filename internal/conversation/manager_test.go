package conversation

import (
	"testing"
	"time"

	"github.com/modernmen/concierge/internal/types"
	"github.com/rs/zerolog"
)

func newTestManager() *Manager {
	return NewManager(zerolog.Nop())
}

func userMessage(id, content string) types.Message {
	return types.Message{
		ID:        id,
		Type:      "text",
		Content:   content,
		Sender:    types.SenderUser,
		Timestamp: time.Now(),
	}
}

func bookingAnalysis(entities map[string]string) types.NLPAnalysis {
	return types.NLPAnalysis{
		Intent: types.Intent{
			Name:       "booking",
			Confidence: 0.9,
			Entities:   entities,
		},
		Sentiment: types.SentimentNeutral,
		Urgency:   types.UrgencyLow,
		Context:   types.AnalysisContext{Topic: "booking"},
	}
}

func TestCreateContextDefaults(t *testing.T) {
	m := newTestManager()

	ctx := m.CreateContext("s1", "user-1")
	if ctx == nil {
		t.Fatal("expected context to be created")
	}
	if ctx.CurrentIntent != "greeting" {
		t.Errorf("expected greeting intent, got %s", ctx.CurrentIntent)
	}
	if ctx.State.TotalSteps != 5 {
		t.Errorf("expected 5 steps in booking flow, got %d", ctx.State.TotalSteps)
	}
	if !ctx.State.IsActive {
		t.Error("expected new context to be active")
	}
	if ctx.State.Step != 0 {
		t.Errorf("expected step 0, got %d", ctx.State.Step)
	}
}

func TestCreateContextOverwritesExisting(t *testing.T) {
	m := newTestManager()

	m.CreateContext("s1", "user-1")
	m.AddMessage("s1", userMessage("m1", "haircut please"), bookingAnalysis(map[string]string{"service_selection": "haircut"}))

	fresh := m.CreateContext("s1", "user-2")
	if fresh.UserID != "user-2" {
		t.Errorf("expected user-2, got %s", fresh.UserID)
	}
	if len(fresh.History) != 0 {
		t.Errorf("expected empty history after overwrite, got %d items", len(fresh.History))
	}
	if fresh.State.Step != 0 {
		t.Errorf("expected step 0 after overwrite, got %d", fresh.State.Step)
	}
}

func TestAddMessageUnknownSession(t *testing.T) {
	m := newTestManager()

	if m.AddMessage("nope", userMessage("m1", "hello"), bookingAnalysis(nil)) {
		t.Error("expected false for unknown session")
	}
	if m.GetContext("nope") != nil {
		t.Error("expected no context to be created as a side effect")
	}
}

func TestAddMessageRecordsHistoryAndIntent(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	ok := m.AddMessage("s1", userMessage("m1", "I want a haircut"),
		bookingAnalysis(map[string]string{"service": "haircut", "service_selection": "haircut"}))
	if !ok {
		t.Fatal("expected addMessage to succeed")
	}

	ctx := m.GetContext("s1")
	if len(ctx.History) != 1 {
		t.Fatalf("expected 1 history item, got %d", len(ctx.History))
	}
	if ctx.CurrentIntent != "booking" {
		t.Errorf("expected booking intent, got %s", ctx.CurrentIntent)
	}

	// Snapshot reflects pre-turn state
	snap := ctx.History[0].Snapshot
	if snap.Intent != "greeting" {
		t.Errorf("expected snapshot intent greeting, got %s", snap.Intent)
	}
	if len(snap.Entities) != 0 {
		t.Errorf("expected empty snapshot entities, got %v", snap.Entities)
	}
	if snap.Step != 0 {
		t.Errorf("expected snapshot step 0, got %d", snap.Step)
	}

	// Entity bag was merged
	if ctx.Entities["service"] != "haircut" {
		t.Errorf("expected service entity, got %v", ctx.Entities)
	}
}

func TestActionTagExtraction(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	m.AddMessage("s1", userMessage("m1", "book me a haircut tomorrow at 2"),
		bookingAnalysis(map[string]string{"service": "haircut", "date": "01/02/2026", "time": "2:00 PM"}))

	ctx := m.GetContext("s1")
	actions := ctx.History[0].Actions

	want := []string{"initiate_booking_flow", "service_selected", "date_selected", "time_selected"}
	if len(actions) != len(want) {
		t.Fatalf("expected %d actions, got %v", len(want), actions)
	}
	for i, tag := range want {
		if actions[i] != tag {
			t.Errorf("expected action %s at %d, got %s", tag, i, actions[i])
		}
	}
}

func TestFlowAdvancesWhenStepValidated(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	// Booking message carrying the service entity keyed by the step id
	m.AddMessage("s1", userMessage("m1", "haircut please"),
		bookingAnalysis(map[string]string{"service": "haircut", "service_selection": "haircut"}))

	step := m.GetCurrentStep("s1")
	if step == nil {
		t.Fatal("expected a current step")
	}
	if step.ID != "date_selection" {
		t.Errorf("expected cursor advanced to date_selection, got %s", step.ID)
	}
}

func TestRequiredStepBlocksUntilEntityAppears(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	// Repeated turns without the service_selection entity keep the cursor put
	for i := 0; i < 3; i++ {
		m.AddMessage("s1", userMessage("m", "hmm"), bookingAnalysis(nil))
		step := m.GetCurrentStep("s1")
		if step == nil || step.ID != "service_selection" {
			t.Fatalf("turn %d: expected service_selection, got %v", i, step)
		}
	}

	m.AddMessage("s1", userMessage("m4", "a haircut"),
		bookingAnalysis(map[string]string{"service_selection": "haircut"}))
	step := m.GetCurrentStep("s1")
	if step.ID != "date_selection" {
		t.Errorf("expected date_selection after entity appeared, got %s", step.ID)
	}
}

func TestPatternStepRejectsBadFormat(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	m.AddMessage("s1", userMessage("m1", "haircut"),
		bookingAnalysis(map[string]string{"service_selection": "haircut"}))

	// Date that does not match MM/DD/YYYY leaves the cursor unchanged
	m.AddMessage("s1", userMessage("m2", "next tuesday"),
		bookingAnalysis(map[string]string{"date_selection": "next tuesday"}))
	step := m.GetCurrentStep("s1")
	if step.ID != "date_selection" {
		t.Errorf("expected cursor to stay at date_selection, got %s", step.ID)
	}

	m.AddMessage("s1", userMessage("m3", "03/15/2026"),
		bookingAnalysis(map[string]string{"date_selection": "03/15/2026"}))
	step = m.GetCurrentStep("s1")
	if step.ID != "time_selection" {
		t.Errorf("expected time_selection after valid date, got %s", step.ID)
	}
}

func TestFlowCompletionStopsAtFinalStep(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	entities := map[string]string{
		"service_selection": "haircut",
		"date_selection":    "03/15/2026",
		"time_selection":    "2:00 PM",
		"customer_info":     "Joe, 555-0101",
	}

	// Each turn advances one validated step
	for i := 0; i < 4; i++ {
		m.AddMessage("s1", userMessage("m", "turn"), bookingAnalysis(entities))
	}

	ctx := m.GetContext("s1")
	if !ctx.State.IsComplete {
		t.Error("expected flow to be complete at final step")
	}
	if ctx.State.Step != 4 {
		t.Errorf("expected cursor at final step 4, got %d", ctx.State.Step)
	}

	// Further turns never advance past the confirmation step
	m.AddMessage("s1", userMessage("m9", "yes"), bookingAnalysis(entities))
	step := m.GetCurrentStep("s1")
	if step == nil || step.ID != "confirmation" {
		t.Errorf("expected confirmation step to remain current, got %v", step)
	}
}

func TestStepNeverSkips(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	// All entities present up front: still only one advance per turn
	entities := map[string]string{
		"service_selection": "haircut",
		"date_selection":    "03/15/2026",
	}
	m.AddMessage("s1", userMessage("m1", "haircut on 03/15"), bookingAnalysis(entities))

	ctx := m.GetContext("s1")
	if ctx.State.Step != 1 {
		t.Errorf("expected single-step advance, got step %d", ctx.State.Step)
	}
}

func TestResetFlow(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	m.AddMessage("s1", userMessage("m1", "haircut"),
		bookingAnalysis(map[string]string{"service_selection": "haircut"}))

	if !m.ResetFlow("s1") {
		t.Fatal("expected reset to succeed")
	}

	ctx := m.GetContext("s1")
	if ctx.State.Step != 0 {
		t.Errorf("expected step 0 after reset, got %d", ctx.State.Step)
	}
	if ctx.State.IsComplete {
		t.Error("expected incomplete after reset")
	}
	if len(ctx.Entities) != 0 {
		t.Errorf("expected entity bag cleared, got %v", ctx.Entities)
	}
	if len(ctx.History) != 1 {
		t.Errorf("expected history preserved, got %d items", len(ctx.History))
	}

	if m.ResetFlow("nope") {
		t.Error("expected false for unknown session")
	}
}

func TestFlowVariables(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	if !m.SetFlowVariable("s1", "selectedService", "haircut") {
		t.Fatal("expected set to succeed")
	}
	value, ok := m.GetFlowVariable("s1", "selectedService")
	if !ok || value != "haircut" {
		t.Errorf("expected haircut, got %q (ok=%v)", value, ok)
	}

	if _, ok := m.GetFlowVariable("s1", "missing"); ok {
		t.Error("expected missing variable to report not found")
	}
	if m.SetFlowVariable("nope", "k", "v") {
		t.Error("expected false for unknown session")
	}
}

func TestUpdateContext(t *testing.T) {
	m := newTestManager()
	created := m.CreateContext("s1", "")

	intent := "support"
	updated := m.UpdateContext("s1", ContextUpdate{CurrentIntent: &intent})
	if updated == nil {
		t.Fatal("expected update to succeed")
	}
	if updated.CurrentIntent != "support" {
		t.Errorf("expected support intent, got %s", updated.CurrentIntent)
	}
	if updated.State.LastActivity.Before(created.State.LastActivity) {
		t.Error("expected lastActivity to be refreshed")
	}

	if m.UpdateContext("nope", ContextUpdate{}) != nil {
		t.Error("expected nil for unknown session")
	}
}

func TestEndSessionAndQueries(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "user-1")
	m.CreateContext("s2", "user-1")
	m.CreateContext("s3", "user-2")

	if !m.EndSession("s2") {
		t.Fatal("expected endSession to succeed")
	}
	if m.EndSession("nope") {
		t.Error("expected false for unknown session")
	}

	active := m.ActiveContexts()
	if len(active) != 2 {
		t.Errorf("expected 2 active contexts, got %d", len(active))
	}

	byUser := m.ContextsByUser("user-1")
	if len(byUser) != 2 {
		t.Errorf("expected 2 contexts for user-1, got %d", len(byUser))
	}

	// Ended session is retained for analytics
	if m.GetContext("s2") == nil {
		t.Error("expected ended context to be retained")
	}
}

func TestCleanupInactive(t *testing.T) {
	m := newTestManager()
	m.CreateContext("old-inactive", "")
	m.CreateContext("old-active", "")
	m.CreateContext("fresh", "")
	m.EndSession("old-inactive")

	// Age the two old contexts directly
	m.mu.Lock()
	stale := time.Now().Add(-48 * time.Hour)
	m.contexts["old-inactive"].State.LastActivity = stale
	m.contexts["old-active"].State.LastActivity = stale
	m.mu.Unlock()

	removed := m.CleanupInactive(24 * time.Hour)
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if m.GetContext("old-inactive") != nil {
		t.Error("expected inactive old context to be removed")
	}
	if m.GetContext("old-active") == nil {
		t.Error("expected active context to be retained regardless of age")
	}

	// Repeated sweep is a no-op
	if removed := m.CleanupInactive(24 * time.Hour); removed != 0 {
		t.Errorf("expected 0 removed on second sweep, got %d", removed)
	}
}

func TestGetStats(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")
	m.CreateContext("s2", "")

	entities := map[string]string{
		"service_selection": "haircut",
		"date_selection":    "03/15/2026",
		"time_selection":    "2:00 PM",
		"customer_info":     "Joe",
	}
	for i := 0; i < 4; i++ {
		m.AddMessage("s1", userMessage("m", "turn"), bookingAnalysis(entities))
	}
	m.EndSession("s2")

	stats := m.GetStats()
	if stats.TotalConversations != 2 {
		t.Errorf("expected 2 total, got %d", stats.TotalConversations)
	}
	if stats.ActiveConversations != 1 {
		t.Errorf("expected 1 active, got %d", stats.ActiveConversations)
	}
	if stats.CompletedFlows != 1 {
		t.Errorf("expected 1 completed, got %d", stats.CompletedFlows)
	}
	if stats.AvgCompletionTime < 0 {
		t.Errorf("expected non-negative completion time, got %v", stats.AvgCompletionTime)
	}
}

func TestGetContextReturnsCopy(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")

	ctx := m.GetContext("s1")
	ctx.Entities["injected"] = "value"
	ctx.CurrentIntent = "tampered"

	fresh := m.GetContext("s1")
	if _, ok := fresh.Entities["injected"]; ok {
		t.Error("expected entity mutation on copy to not affect stored context")
	}
	if fresh.CurrentIntent == "tampered" {
		t.Error("expected intent mutation on copy to not affect stored context")
	}
}

func TestGetContextCopyDoesNotShareFlowVariables(t *testing.T) {
	m := newTestManager()
	m.CreateContext("s1", "")
	m.SetFlowVariable("s1", "selectedService", "haircut")

	ctx := m.GetContext("s1")
	ctx.State.Flow.Variables["selectedService"] = "tampered"
	ctx.State.Flow.Variables["injected"] = "value"

	value, ok := m.GetFlowVariable("s1", "selectedService")
	if !ok || value != "haircut" {
		t.Errorf("expected stored variable haircut, got %q (ok=%v)", value, ok)
	}
	if _, ok := m.GetFlowVariable("s1", "injected"); ok {
		t.Error("expected variable mutation on copy to not affect stored context")
	}
}
