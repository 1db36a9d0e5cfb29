package routing

import (
	"math"
	"sort"

	"github.com/modernmen/concierge/internal/conversation"
	"github.com/modernmen/concierge/internal/types"
)

// findBestAgent ranks currently available agents for a fired rule and
// returns the top scorer, up to three alternatives, and an estimated wait
// in minutes. No available agents yields a flat 15-minute estimate.
func (e *Engine) findBestAgent(rule *types.RoutingRule, convCtx *conversation.Context) (*types.Agent, []types.Agent, int) {
	available := e.dir.Available()
	if len(available) == 0 {
		return nil, []types.Agent{}, 15
	}

	sort.SliceStable(available, func(i, j int) bool {
		return scoreAgent(&available[i], rule, convCtx) > scoreAgent(&available[j], rule, convCtx)
	})

	recommended := available[0]
	alternatives := make([]types.Agent, 0, 3)
	for i := 1; i < len(available) && i < 4; i++ {
		alternatives = append(alternatives, available[i])
	}

	wait := recommended.CurrentConversations * 2
	if wait < 1 {
		wait = 1
	}

	return &recommended, alternatives, wait
}

// scoreAgent computes the composite match score for an agent against a
// fired rule and the conversation context. Higher is better; the score is
// monotonic in rating and availability headroom.
func scoreAgent(agent *types.Agent, rule *types.RoutingRule, convCtx *conversation.Context) float64 {
	var score float64

	// Availability headroom
	if agent.MaxConversations > 0 {
		headroom := 1 - float64(agent.CurrentConversations)/float64(agent.MaxConversations)
		score += headroom * 20
	}

	// Rule-specific skill bonuses
	if rule != nil {
		if ruleMentionsKeyword(rule, "booking") && hasString(agent.Skills, "booking") {
			score += 15
		}
		if ruleMatchesSentiment(rule, types.SentimentNegative) && hasString(agent.Skills, "customer_service") {
			score += 15
		}
	}

	// Experience, capped
	score += math.Min(float64(agent.Experience)*2, 10)

	// Rating and above-average satisfaction
	score += agent.Rating * 5
	score += (agent.Performance.CustomerSatisfaction - 3) * 2

	if convCtx != nil {
		if convCtx.Metadata.Language != "" && hasString(agent.Languages, convCtx.Metadata.Language) {
			score += 10
		}
		if convCtx.CurrentIntent == "booking" && hasString(agent.Specialties, "appointments") {
			score += 15
		}
	}

	return score
}

func ruleMentionsKeyword(rule *types.RoutingRule, keyword string) bool {
	for _, cond := range rule.Conditions {
		if cond.Type != types.CondKeywords {
			continue
		}
		if cond.Value == keyword {
			return true
		}
		for _, kw := range cond.Keywords {
			if kw == keyword {
				return true
			}
		}
	}
	return false
}

func ruleMatchesSentiment(rule *types.RoutingRule, sentiment types.Sentiment) bool {
	for _, cond := range rule.Conditions {
		if cond.Type == types.CondSentiment && types.Sentiment(cond.Value) == sentiment {
			return true
		}
	}
	return false
}

func hasString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
