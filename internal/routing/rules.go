package routing

import "github.com/modernmen/concierge/internal/types"

// DefaultRules returns the built-in escalation policies. Declaration order
// is the effective evaluation order; Priority only feeds urgency
// derivation. Target/fallback pools are empty and resolved dynamically by
// agent scoring.
func DefaultRules() []types.RoutingRule {
	return []types.RoutingRule{
		{
			ID:   "high_urgency",
			Name: "High Urgency Escalation",
			Conditions: []types.RoutingCondition{
				{Type: types.CondUrgency, Operator: types.OpEquals, Value: "high", Weight: 1.0},
			},
			Priority:       10,
			EscalationTime: 1,
			Reason:         "High urgency conversation requiring immediate human attention",
			IsActive:       true,
		},
		{
			ID:   "negative_sentiment",
			Name: "Negative Sentiment Escalation",
			Conditions: []types.RoutingCondition{
				{Type: types.CondSentiment, Operator: types.OpEquals, Value: "negative", Weight: 0.9},
			},
			Priority:       9,
			EscalationTime: 2,
			Reason:         "Negative customer sentiment requiring empathetic human handling",
			IsActive:       true,
		},
		{
			ID:   "vip_customer",
			Name: "VIP Customer Priority",
			Conditions: []types.RoutingCondition{
				{Type: types.CondUserHistory, Operator: types.OpContains, Value: "vip", Weight: 0.7},
			},
			Priority:       8,
			EscalationTime: 1,
			Reason:         "VIP customer requiring priority handling",
			IsActive:       true,
		},
		{
			ID:   "low_confidence",
			Name: "Low Confidence Escalation",
			Conditions: []types.RoutingCondition{
				{Type: types.CondIntentConfidence, Operator: types.OpLessThan, Number: 0.6, Weight: 0.8},
				{Type: types.CondComplexity, Operator: types.OpGreaterThan, Number: 0.7, Weight: 0.6},
			},
			Priority:       7,
			EscalationTime: 3,
			Reason:         "Low confidence in bot understanding requiring human clarification",
			IsActive:       true,
		},
		{
			ID:   "complex_booking",
			Name: "Complex Booking Assistance",
			Conditions: []types.RoutingCondition{
				{Type: types.CondKeywords, Operator: types.OpContains, Keywords: []string{"cancel", "change", "refund", "complaint", "problem"}, Weight: 0.8},
				{Type: types.CondIntentConfidence, Operator: types.OpLessThan, Number: 0.7, Weight: 0.5},
			},
			Priority:       6,
			EscalationTime: 2,
			Reason:         "Complex booking issue requiring specialized assistance",
			IsActive:       true,
		},
	}
}
