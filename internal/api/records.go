package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/modernmen/concierge/internal/storage"
	"github.com/modernmen/concierge/internal/types"
	"github.com/rs/zerolog"
)

// RecordsHandler provides REST endpoints over persisted conversation and
// transfer records
type RecordsHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewRecordsHandler creates a new RecordsHandler
func NewRecordsHandler(store storage.Store, logger zerolog.Logger) *RecordsHandler {
	return &RecordsHandler{
		store:  store,
		logger: logger.With().Str("component", "records").Logger(),
	}
}

// GetConversations returns conversation records for a specific date
// GET /api/records/conversations?date=YYYY-MM-DD
func (h *RecordsHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	records, err := h.store.GetConversationRecords(date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to get conversation records")
		http.Error(w, "failed to retrieve records", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []types.ConversationRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetTransfers returns transfer records for a specific date
// GET /api/records/transfers?date=YYYY-MM-DD
func (h *RecordsHandler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	records, err := h.store.GetTransferRecords(date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to get transfer records")
		http.Error(w, "failed to retrieve records", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []types.TransferRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetAgentTransfers returns transfer records handled by one agent on a date
// GET /api/agents/{agentID}/transfers?date=YYYY-MM-DD
func (h *RecordsHandler) GetAgentTransfers(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	if agentID == "" {
		http.Error(w, "agentID is required", http.StatusBadRequest)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	records, err := h.store.GetAgentTransfersByDate(agentID, date)
	if err != nil {
		h.logger.Error().Err(err).
			Str("agent_id", agentID).
			Str("date", date).
			Msg("failed to get agent transfers")
		http.Error(w, "failed to retrieve records", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []types.TransferRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// Truncate wipes all persisted records
// DELETE /api/records
func (h *RecordsHandler) Truncate(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate record tables")
		http.Error(w, fmt.Sprintf(`{"error":"failed to truncate: %s"}`, err), http.StatusInternalServerError)
		return
	}

	h.logger.Info().Msg("record tables truncated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "record tables truncated",
	})
}
