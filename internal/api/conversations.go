package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modernmen/concierge/internal/conversation"
	"github.com/modernmen/concierge/internal/metrics"
	"github.com/modernmen/concierge/internal/routing"
	"github.com/modernmen/concierge/internal/types"
	"github.com/modernmen/concierge/internal/websocket"
	"github.com/rs/zerolog"
)

// ConversationsHandler provides REST endpoints for conversation sessions
type ConversationsHandler struct {
	manager *conversation.Manager
	engine  *routing.Engine
	hub     *websocket.Hub
	logger  zerolog.Logger
}

// NewConversationsHandler creates a new ConversationsHandler
func NewConversationsHandler(manager *conversation.Manager, engine *routing.Engine, hub *websocket.Hub, logger zerolog.Logger) *ConversationsHandler {
	return &ConversationsHandler{
		manager: manager,
		engine:  engine,
		hub:     hub,
		logger:  logger.With().Str("component", "conversations").Logger(),
	}
}

// CreateConversation handles POST /api/conversations
func (h *ConversationsHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		UserID    string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	ctx := h.manager.CreateContext(req.SessionID, req.UserID)
	metrics.Get().RecordSessionStarted()

	h.logger.Info().
		Str("session_id", req.SessionID).
		Str("user_id", req.UserID).
		Msg("conversation created")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ctx)
}

// PostMessage handles POST /api/conversations/{sessionID}/messages.
// It records the turn, advances the flow and evaluates routing in one step.
func (h *ConversationsHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Message  types.Message     `json:"message"`
		Analysis types.NLPAnalysis `json:"analysis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Message.Timestamp.IsZero() {
		req.Message.Timestamp = time.Now()
	}

	prior := h.manager.GetContext(sessionID)

	if !h.manager.AddMessage(sessionID, req.Message, req.Analysis) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	metrics.Get().RecordMessageProcessed()

	convCtx := h.manager.GetContext(sessionID)
	decision := h.engine.EvaluateRouting(r.Context(), sessionID, req.Message, req.Analysis, convCtx)

	if decision.ShouldEscalate {
		ruleID := ""
		if decision.Rule != nil {
			ruleID = decision.Rule.ID
		}
		metrics.Get().RecordEscalation(ruleID)
		h.hub.PublishEscalation(sessionID, decision)
	}
	if convCtx != nil && convCtx.State.IsComplete && (prior == nil || !prior.State.IsComplete) {
		metrics.Get().RecordFlowCompleted()
	}

	step := h.manager.GetCurrentStep(sessionID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"context":  convCtx,
		"step":     step,
		"decision": decision,
	})
}

// GetConversation handles GET /api/conversations/{sessionID}
func (h *ConversationsHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ctx := h.manager.GetContext(sessionID)
	if ctx == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ctx)
}

// GetCurrentStep handles GET /api/conversations/{sessionID}/step
func (h *ConversationsHandler) GetCurrentStep(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	step := h.manager.GetCurrentStep(sessionID)
	if step == nil {
		http.Error(w, "no active step", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(step)
}

// ResetFlow handles POST /api/conversations/{sessionID}/reset
func (h *ConversationsHandler) ResetFlow(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if !h.manager.ResetFlow(sessionID) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	h.logger.Info().Str("session_id", sessionID).Msg("flow reset")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "flow reset"})
}

// EndConversation handles DELETE /api/conversations/{sessionID}
func (h *ConversationsHandler) EndConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if !h.manager.EndSession(sessionID) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	metrics.Get().RecordSessionEnded()

	h.logger.Info().Str("session_id", sessionID).Msg("conversation ended")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "conversation ended"})
}

// GetStats handles GET /api/conversations/stats
func (h *ConversationsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.manager.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetAnalytics handles GET /api/routing/analytics
func (h *ConversationsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics := h.engine.GetAnalytics()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analytics)
}
