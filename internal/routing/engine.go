package routing

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/modernmen/concierge/internal/conversation"
	"github.com/modernmen/concierge/internal/directory"
	"github.com/modernmen/concierge/internal/types"
	"github.com/rs/zerolog"
)

// escalationThreshold is the weighted-match confidence a rule must reach
// to fire. Hard boundary: 0.59 does not fire, 0.60 does.
const escalationThreshold = 0.6

// reasonCritical overrides the firing rule's reason when the raw analysis
// itself signals a critical situation.
const reasonCritical = "Critical situation requiring immediate human attention"

// ProfileChecker answers user-history conditions. Lookups that fail must
// return false, never an error.
type ProfileChecker interface {
	HasTag(ctx context.Context, userID, tag string) bool
}

// Notifier delivers transfer notifications to agents
type Notifier interface {
	Notify(ctx context.Context, agentID string, n directory.TransferNotification)
}

// TransferStore is the subset of storage.Store needed by the engine
type TransferStore interface {
	SaveTransferRecord(record types.TransferRecord) error
}

// Engine decides, per inbound turn, whether the bot should hand off to a
// human and to whom. Rules are evaluated in declared order with
// first-match-wins semantics.
type Engine struct {
	dir      *directory.Directory
	profiles ProfileChecker
	notifier Notifier
	rules    []types.RoutingRule
	store    TransferStore

	transfers map[string]*types.ConversationTransfer
	mu        sync.RWMutex

	logger zerolog.Logger
	now    func() time.Time
}

// NewEngine creates a routing engine with the default rule set
func NewEngine(dir *directory.Directory, profiles ProfileChecker, notifier Notifier, logger zerolog.Logger) *Engine {
	return &Engine{
		dir:       dir,
		profiles:  profiles,
		notifier:  notifier,
		rules:     DefaultRules(),
		transfers: make(map[string]*types.ConversationTransfer),
		logger:    logger.With().Str("component", "routing").Logger(),
		now:       time.Now,
	}
}

// SetRules replaces the rule list. Intended for startup configuration only;
// rules are not mutated at runtime.
func (e *Engine) SetRules(rules []types.RoutingRule) {
	e.rules = rules
}

// SetStore sets the persistence store for finished transfer records
func (e *Engine) SetStore(store TransferStore) {
	e.store = store
}

// EvaluateRouting evaluates all active rules against a turn and produces a
// routing decision. First rule whose weighted condition match reaches the
// threshold wins; the critical override (raw urgency high or negative
// sentiment) forces escalation regardless of rule outcomes.
func (e *Engine) EvaluateRouting(ctx context.Context, sessionID string, msg types.Message, analysis types.NLPAnalysis, convCtx *conversation.Context) types.RoutingDecision {
	decision := types.RoutingDecision{
		Urgency:           types.UrgencyLow,
		AlternativeAgents: []types.Agent{},
	}

	for i := range e.rules {
		rule := &e.rules[i]
		if !rule.IsActive {
			continue
		}

		confidence := e.evaluateRule(ctx, rule, msg, analysis, convCtx)
		if confidence >= escalationThreshold {
			decision.ShouldEscalate = true
			decision.Confidence = math.Max(decision.Confidence, confidence)
			decision.Rule = rule
			decision.Reason = rule.Reason
			decision.Urgency = deriveUrgency(rule, analysis)
			break
		}
	}

	if decision.ShouldEscalate {
		recommended, alternatives, wait := e.findBestAgent(decision.Rule, convCtx)
		decision.RecommendedAgent = recommended
		decision.AlternativeAgents = alternatives
		decision.EstimatedWaitMins = wait
	}

	// The override always wins and can escalate even when no rule matched
	if analysis.Urgency == types.UrgencyHigh || analysis.Sentiment == types.SentimentNegative {
		decision.ShouldEscalate = true
		decision.Urgency = types.UrgencyHigh
		decision.Reason = reasonCritical
	}

	e.logger.Debug().
		Str("session_id", sessionID).
		Bool("escalate", decision.ShouldEscalate).
		Float64("confidence", decision.Confidence).
		Str("urgency", string(decision.Urgency)).
		Msg("routing evaluated")

	return decision
}

// evaluateRule computes the weighted match confidence for a rule. A rule
// with zero total condition weight yields 0, never a division by zero.
func (e *Engine) evaluateRule(ctx context.Context, rule *types.RoutingRule, msg types.Message, analysis types.NLPAnalysis, convCtx *conversation.Context) float64 {
	var totalWeight, matchedWeight float64

	for _, cond := range rule.Conditions {
		totalWeight += cond.Weight
		if e.evaluateCondition(ctx, cond, msg, analysis, convCtx) {
			matchedWeight += cond.Weight
		}
	}

	if totalWeight <= 0 {
		return 0
	}
	return matchedWeight / totalWeight
}

func (e *Engine) evaluateCondition(ctx context.Context, cond types.RoutingCondition, msg types.Message, analysis types.NLPAnalysis, convCtx *conversation.Context) bool {
	switch cond.Type {
	case types.CondIntentConfidence:
		return compareNumeric(analysis.Intent.Confidence, cond.Operator, cond.Number)

	case types.CondSentiment:
		return analysis.Sentiment == types.Sentiment(cond.Value)

	case types.CondComplexity:
		return compareNumeric(complexity(analysis), cond.Operator, cond.Number)

	case types.CondUrgency:
		return analysis.Urgency == types.UrgencyLevel(cond.Value)

	case types.CondKeywords:
		text := strings.ToLower(msg.Content)
		if len(cond.Keywords) > 0 {
			for _, kw := range cond.Keywords {
				if strings.Contains(text, strings.ToLower(kw)) {
					return true
				}
			}
			return false
		}
		return cond.Value != "" && strings.Contains(text, strings.ToLower(cond.Value))

	case types.CondUserHistory:
		if convCtx == nil {
			return false
		}
		return e.profiles.HasTag(ctx, convCtx.UserID, cond.Value)

	case types.CondTime:
		return e.evaluateTimeCondition(cond)

	case types.CondChannel:
		return string(msg.Sender) == cond.Value

	case types.CondLanguage:
		// Placeholder until language detection is wired up
		return true

	default:
		return false
	}
}

func compareNumeric(value float64, op types.ConditionOperator, target float64) bool {
	switch op {
	case types.OpEquals:
		return math.Abs(value-target) < 0.1
	case types.OpGreaterThan:
		return value > target
	case types.OpLessThan:
		return value < target
	default:
		return false
	}
}

// complexity derives a 0-1 score blending inverse intent confidence,
// entity count, topic genericness and negative sentiment.
func complexity(analysis types.NLPAnalysis) float64 {
	score := (1 - analysis.Intent.Confidence) * 0.4

	entityShare := float64(len(analysis.Intent.Entities)) / 5
	score += math.Min(entityShare, 0.3)

	if analysis.Context.Topic == "general" {
		score += 0.2
	}
	if analysis.Sentiment == types.SentimentNegative {
		score += 0.2
	}

	return math.Min(score, 1)
}

func (e *Engine) evaluateTimeCondition(cond types.RoutingCondition) bool {
	hour := e.now().Hour()

	switch cond.Value {
	case "business_hours":
		return hour >= 9 && hour <= 18
	case "after_hours":
		return hour < 9 || hour > 18
	case "peak_hours":
		return (hour >= 11 && hour <= 14) || (hour >= 17 && hour <= 19)
	default:
		return false
	}
}

// deriveUrgency maps rule priority to an urgency tier; the raw analysis
// override takes precedence.
func deriveUrgency(rule *types.RoutingRule, analysis types.NLPAnalysis) types.UrgencyLevel {
	if analysis.Urgency == types.UrgencyHigh || analysis.Sentiment == types.SentimentNegative {
		return types.UrgencyHigh
	}

	switch {
	case rule.Priority >= 9:
		return types.UrgencyHigh
	case rule.Priority >= 7:
		return types.UrgencyMedium
	default:
		return types.UrgencyLow
	}
}

// Analytics is an aggregate view over transfers and agent performance
type Analytics struct {
	TotalTransfers     int                               `json:"totalTransfers"`
	CompletedTransfers int                               `json:"completedTransfers"`
	AvgEscalationTime  float64                           `json:"averageEscalationTime"` // minutes
	ResolutionRate     float64                           `json:"resolutionRate"`
	AgentPerformance   map[string]types.AgentPerformance `json:"agentPerformance"`
	EscalationReasons  map[string]int                    `json:"commonEscalationReasons"`
}

// GetAnalytics aggregates transfer outcomes and agent performance
func (e *Engine) GetAnalytics() Analytics {
	e.mu.RLock()
	defer e.mu.RUnlock()

	analytics := Analytics{
		AgentPerformance:  make(map[string]types.AgentPerformance),
		EscalationReasons: make(map[string]int),
	}

	var totalResolution time.Duration
	var resolved int
	for _, transfer := range e.transfers {
		analytics.TotalTransfers++
		analytics.EscalationReasons[transfer.Reason]++
		if transfer.Status == types.TransferCompleted && transfer.ResolvedAt != nil {
			analytics.CompletedTransfers++
			totalResolution += transfer.ResolvedAt.Sub(transfer.Timestamp)
			resolved++
		}
	}

	if resolved > 0 {
		analytics.AvgEscalationTime = (totalResolution / time.Duration(resolved)).Minutes()
	}
	if analytics.TotalTransfers > 0 {
		analytics.ResolutionRate = float64(analytics.CompletedTransfers) / float64(analytics.TotalTransfers)
	}

	for _, agent := range e.dir.All() {
		analytics.AgentPerformance[agent.ID] = agent.Performance
	}

	return analytics
}
