package routing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/modernmen/concierge/internal/directory"
	"github.com/modernmen/concierge/internal/types"
)

// InitiateTransfer creates a pending transfer to the decision's recommended
// agent and notifies the agent. Returns nil when the decision carries no
// recommended agent.
func (e *Engine) InitiateTransfer(conversationID string, decision types.RoutingDecision, initiatedBy types.TransferInitiator) *types.ConversationTransfer {
	if decision.RecommendedAgent == nil {
		return nil
	}

	transfer := &types.ConversationTransfer{
		ID:             "transfer_" + uuid.New().String(),
		ConversationID: conversationID,
		ToAgent:        decision.RecommendedAgent.ID,
		Reason:         decision.Reason,
		InitiatedBy:    initiatedBy,
		TransferType:   "escalation",
		Timestamp:      e.now(),
		Status:         types.TransferPending,
	}

	e.mu.Lock()
	e.transfers[transfer.ID] = transfer
	e.mu.Unlock()

	// Fire and forget: notification failure never blocks the transfer
	go e.notifier.Notify(context.Background(), transfer.ToAgent, directory.TransferNotification{
		Type:           "transfer_request",
		TransferID:     transfer.ID,
		ConversationID: transfer.ConversationID,
		Reason:         transfer.Reason,
		Priority:       "high",
	})

	e.logger.Info().
		Str("transfer_id", transfer.ID).
		Str("conversation_id", conversationID).
		Str("to_agent", transfer.ToAgent).
		Msg("transfer initiated")

	return transfer
}

// GetTransfer returns a copy of a tracked transfer
func (e *Engine) GetTransfer(transferID string) (types.ConversationTransfer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	transfer, ok := e.transfers[transferID]
	if !ok {
		return types.ConversationTransfer{}, false
	}
	return *transfer, true
}

// AcceptTransfer moves a pending transfer to accepted. Only the targeted
// agent may respond; accepting bumps the agent's live conversation counter
// and may flip its status to busy.
func (e *Engine) AcceptTransfer(transferID, agentID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	transfer, ok := e.transfers[transferID]
	if !ok || transfer.ToAgent != agentID || transfer.Status != types.TransferPending {
		return false
	}

	now := e.now()
	transfer.Status = types.TransferAccepted
	transfer.ResolvedAt = &now

	e.dir.AddConversation(agentID)

	e.logger.Info().
		Str("transfer_id", transferID).
		Str("agent_id", agentID).
		Msg("transfer accepted")
	return true
}

// RejectTransfer moves a pending transfer to rejected, recording the
// agent's reason in the notes.
func (e *Engine) RejectTransfer(transferID, agentID, reason string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	transfer, ok := e.transfers[transferID]
	if !ok || transfer.ToAgent != agentID || transfer.Status != types.TransferPending {
		return false
	}

	now := e.now()
	transfer.Status = types.TransferRejected
	transfer.ResolvedAt = &now
	transfer.Notes = reason

	e.persistTransfer(transfer)

	e.logger.Info().
		Str("transfer_id", transferID).
		Str("agent_id", agentID).
		Str("reason", reason).
		Msg("transfer rejected")
	return true
}

// CompleteTransfer moves an accepted transfer to completed once the agent
// finishes the conversation, releasing the agent's concurrency slot and
// recording optional customer feedback.
func (e *Engine) CompleteTransfer(transferID, agentID string, feedback *types.CustomerFeedback) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	transfer, ok := e.transfers[transferID]
	if !ok || transfer.ToAgent != agentID || transfer.Status != types.TransferAccepted {
		return false
	}

	now := e.now()
	transfer.Status = types.TransferCompleted
	transfer.ResolvedAt = &now
	transfer.CustomerFeedback = feedback

	e.dir.ReleaseConversation(agentID)
	e.persistTransfer(transfer)

	e.logger.Info().
		Str("transfer_id", transferID).
		Str("agent_id", agentID).
		Msg("transfer completed")
	return true
}

// persistTransfer saves a finished transfer asynchronously. Callers must
// hold the engine lock; the record snapshot is taken before the goroutine.
func (e *Engine) persistTransfer(transfer *types.ConversationTransfer) {
	if e.store == nil {
		return
	}

	record := transferToRecord(transfer)
	go func() {
		if err := e.store.SaveTransferRecord(record); err != nil {
			e.logger.Error().Err(err).Str("transfer_id", record.TransferID).Msg("failed to save transfer record")
		}
	}()
}

func transferToRecord(transfer *types.ConversationTransfer) types.TransferRecord {
	record := types.TransferRecord{
		DateKey:        transfer.Timestamp.Format("2006-01-02"),
		TransferID:     transfer.ID,
		ConversationID: transfer.ConversationID,
		ToAgent:        transfer.ToAgent,
		Reason:         transfer.Reason,
		InitiatedBy:    string(transfer.InitiatedBy),
		Status:         string(transfer.Status),
		InitiatedAt:    transfer.Timestamp.Format(time.RFC3339),
	}
	if transfer.ResolvedAt != nil {
		record.ResolvedAt = transfer.ResolvedAt.Format(time.RFC3339)
	}
	if transfer.CustomerFeedback != nil {
		record.Satisfaction = float64(transfer.CustomerFeedback.Rating)
	}
	return record
}
