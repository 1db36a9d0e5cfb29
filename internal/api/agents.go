package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/modernmen/concierge/internal/directory"
	"github.com/modernmen/concierge/internal/types"
	"github.com/rs/zerolog"
)

// StatusPusher propagates agent status changes to the agent service
type StatusPusher interface {
	PushStatus(ctx context.Context, agentID string, status types.AgentStatus)
}

// AgentsHandler provides REST endpoints over the agent directory
type AgentsHandler struct {
	dir    *directory.Directory
	pusher StatusPusher
	logger zerolog.Logger
}

// NewAgentsHandler creates a new AgentsHandler
func NewAgentsHandler(dir *directory.Directory, pusher StatusPusher, logger zerolog.Logger) *AgentsHandler {
	return &AgentsHandler{
		dir:    dir,
		pusher: pusher,
		logger: logger.With().Str("component", "agents").Logger(),
	}
}

// GetAvailable handles GET /api/agents/available
func (h *AgentsHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	agents := h.dir.Available()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(agents)
}

// GetWorkload handles GET /api/agents/workload
func (h *AgentsHandler) GetWorkload(w http.ResponseWriter, r *http.Request) {
	workloads := h.dir.Workloads()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(workloads)
}

// UpdateStatus handles PUT /api/agents/{agentID}/status
func (h *AgentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	var req struct {
		Status types.AgentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	switch req.Status {
	case types.AgentOnline, types.AgentBusy, types.AgentAway, types.AgentOffline:
	default:
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	if !h.dir.SetStatus(agentID, req.Status) {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}

	// The local directory is authoritative; the push to the agent service
	// is fire and forget like transfer notifications.
	go h.pusher.PushStatus(context.Background(), agentID, req.Status)

	h.logger.Info().
		Str("agent_id", agentID).
		Str("status", string(req.Status)).
		Msg("agent status updated via API")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "status updated",
		"agentId": agentID,
		"status":  string(req.Status),
	})
}
