package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/modernmen/concierge/internal/directory"
	"github.com/modernmen/concierge/internal/metrics"
	"github.com/modernmen/concierge/internal/routing"
	"github.com/modernmen/concierge/internal/types"
	"github.com/modernmen/concierge/internal/websocket"
	"github.com/rs/zerolog"
)

// TransfersHandler provides REST endpoints for the transfer lifecycle
type TransfersHandler struct {
	engine *routing.Engine
	dir    *directory.Directory
	hub    *websocket.Hub
	logger zerolog.Logger
}

// NewTransfersHandler creates a new TransfersHandler
func NewTransfersHandler(engine *routing.Engine, dir *directory.Directory, hub *websocket.Hub, logger zerolog.Logger) *TransfersHandler {
	return &TransfersHandler{
		engine: engine,
		dir:    dir,
		hub:    hub,
		logger: logger.With().Str("component", "transfers").Logger(),
	}
}

// Initiate handles POST /api/transfers
func (h *TransfersHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string                  `json:"conversationId"`
		AgentID        string                  `json:"agentId"`
		Reason         string                  `json:"reason"`
		Urgency        types.UrgencyLevel      `json:"urgency"`
		InitiatedBy    types.TransferInitiator `json:"initiatedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ConversationID == "" || req.AgentID == "" {
		http.Error(w, "conversationId and agentId are required", http.StatusBadRequest)
		return
	}

	agent, ok := h.dir.Get(req.AgentID)
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	if req.Urgency == "" {
		req.Urgency = types.UrgencyMedium
	}
	if req.InitiatedBy == "" {
		req.InitiatedBy = types.InitiatedBySystem
	}

	decision := types.RoutingDecision{
		ShouldEscalate:   true,
		Confidence:       1.0,
		RecommendedAgent: &agent,
		Reason:           req.Reason,
		Urgency:          req.Urgency,
	}

	transfer := h.engine.InitiateTransfer(req.ConversationID, decision, req.InitiatedBy)
	if transfer == nil {
		http.Error(w, "failed to initiate transfer", http.StatusInternalServerError)
		return
	}
	metrics.Get().RecordTransfer(types.TransferPending)
	h.hub.PublishTransferUpdate(*transfer)

	h.logger.Info().
		Str("transfer_id", transfer.ID).
		Str("conversation_id", req.ConversationID).
		Str("agent_id", req.AgentID).
		Msg("transfer initiated via API")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transfer)
}

// Accept handles POST /api/transfers/{transferID}/accept
func (h *TransfersHandler) Accept(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")

	var req struct {
		AgentID string `json:"agentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if !h.engine.AcceptTransfer(transferID, req.AgentID) {
		http.Error(w, "transfer not pending for this agent", http.StatusConflict)
		return
	}
	metrics.Get().RecordTransfer(types.TransferAccepted)
	h.publishUpdate(transferID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "transfer accepted"})
}

// Reject handles POST /api/transfers/{transferID}/reject
func (h *TransfersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")

	var req struct {
		AgentID string `json:"agentId"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if !h.engine.RejectTransfer(transferID, req.AgentID, req.Reason) {
		http.Error(w, "transfer not pending for this agent", http.StatusConflict)
		return
	}
	metrics.Get().RecordTransfer(types.TransferRejected)
	h.publishUpdate(transferID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "transfer rejected"})
}

// Complete handles POST /api/transfers/{transferID}/complete
func (h *TransfersHandler) Complete(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")

	var req struct {
		AgentID  string                  `json:"agentId"`
		Feedback *types.CustomerFeedback `json:"feedback,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if !h.engine.CompleteTransfer(transferID, req.AgentID, req.Feedback) {
		http.Error(w, "transfer not accepted by this agent", http.StatusConflict)
		return
	}
	metrics.Get().RecordTransfer(types.TransferCompleted)
	h.publishUpdate(transferID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "transfer completed"})
}

// GetTransfer handles GET /api/transfers/{transferID}
func (h *TransfersHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")

	transfer, ok := h.engine.GetTransfer(transferID)
	if !ok {
		http.Error(w, "transfer not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transfer)
}

func (h *TransfersHandler) publishUpdate(transferID string) {
	if transfer, ok := h.engine.GetTransfer(transferID); ok {
		h.hub.PublishTransferUpdate(transfer)
	}
}
