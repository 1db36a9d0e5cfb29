package routing

import (
	"testing"

	"github.com/modernmen/concierge/internal/conversation"
	"github.com/modernmen/concierge/internal/types"
)

func baseAgent() types.Agent {
	return types.Agent{
		ID:                   "a1",
		Status:               types.AgentOnline,
		CurrentConversations: 2,
		MaxConversations:     5,
		Experience:           3,
		Rating:               4.0,
		Performance:          types.AgentPerformance{CustomerSatisfaction: 4.0},
	}
}

func TestScoreMonotonicInRating(t *testing.T) {
	ctx := &conversation.Context{CurrentIntent: "booking", Metadata: conversation.Metadata{Language: "en"}}
	rule := &types.RoutingRule{ID: "r"}

	prev := -1.0
	for rating := 1.0; rating <= 5.0; rating += 0.5 {
		agent := baseAgent()
		agent.Rating = rating
		score := scoreAgent(&agent, rule, ctx)
		if score < prev {
			t.Fatalf("score decreased when rating rose to %.1f: %f < %f", rating, score, prev)
		}
		prev = score
	}
}

func TestScoreHeadroomBonus(t *testing.T) {
	rule := &types.RoutingRule{ID: "r"}

	idle := baseAgent()
	idle.CurrentConversations = 0
	loaded := baseAgent()
	loaded.CurrentConversations = 4

	if scoreAgent(&idle, rule, nil) <= scoreAgent(&loaded, rule, nil) {
		t.Error("expected idle agent to outscore loaded agent")
	}
}

func TestScoreSkillBonuses(t *testing.T) {
	bookingRule := &types.RoutingRule{
		ID: "booking_help",
		Conditions: []types.RoutingCondition{
			{Type: types.CondKeywords, Keywords: []string{"booking", "reschedule"}, Weight: 1},
		},
	}
	sentimentRule := &types.RoutingRule{
		ID: "upset",
		Conditions: []types.RoutingCondition{
			{Type: types.CondSentiment, Value: "negative", Weight: 1},
		},
	}

	plain := baseAgent()
	booker := baseAgent()
	booker.Skills = []string{"booking"}
	soother := baseAgent()
	soother.Skills = []string{"customer_service"}

	if got, want := scoreAgent(&booker, bookingRule, nil)-scoreAgent(&plain, bookingRule, nil), 15.0; got != want {
		t.Errorf("expected booking skill bonus of %v, got %v", want, got)
	}
	if got, want := scoreAgent(&soother, sentimentRule, nil)-scoreAgent(&plain, sentimentRule, nil), 15.0; got != want {
		t.Errorf("expected customer_service bonus of %v, got %v", want, got)
	}
	// Bonus only applies to the matching rule
	if got := scoreAgent(&booker, sentimentRule, nil) - scoreAgent(&plain, sentimentRule, nil); got != 0 {
		t.Errorf("expected no booking bonus under sentiment rule, got %v", got)
	}
}

func TestScoreExperienceCapped(t *testing.T) {
	rule := &types.RoutingRule{ID: "r"}

	veteran := baseAgent()
	veteran.Experience = 20
	senior := baseAgent()
	senior.Experience = 5

	if scoreAgent(&veteran, rule, nil) != scoreAgent(&senior, rule, nil) {
		t.Error("expected experience bonus to cap at 5 years")
	}
}

func TestScoreLanguageAndSpecialtyMatch(t *testing.T) {
	rule := &types.RoutingRule{ID: "r"}
	ctx := &conversation.Context{CurrentIntent: "booking", Metadata: conversation.Metadata{Language: "es"}}

	polyglot := baseAgent()
	polyglot.Languages = []string{"en", "es"}
	specialist := baseAgent()
	specialist.Specialties = []string{"appointments"}
	plain := baseAgent()

	if got := scoreAgent(&polyglot, rule, ctx) - scoreAgent(&plain, rule, ctx); got != 10 {
		t.Errorf("expected language bonus of 10, got %v", got)
	}
	if got := scoreAgent(&specialist, rule, ctx) - scoreAgent(&plain, rule, ctx); got != 15 {
		t.Errorf("expected specialty bonus of 15, got %v", got)
	}
}

func TestFindBestAgentLimitsAlternatives(t *testing.T) {
	agents := make([]types.Agent, 0, 6)
	for _, id := range []string{"a1", "a2", "a3", "a4", "a5", "a6"} {
		a := baseAgent()
		a.ID = id
		agents = append(agents, a)
	}
	e, _ := newTestEngine(agents...)

	rule := DefaultRules()[0]
	recommended, alternatives, wait := e.findBestAgent(&rule, nil)
	if recommended == nil {
		t.Fatal("expected a recommendation")
	}
	if len(alternatives) != 3 {
		t.Errorf("expected 3 alternatives, got %d", len(alternatives))
	}
	if wait != 4 {
		t.Errorf("expected wait of 4 minutes for 2 active conversations, got %d", wait)
	}
}
