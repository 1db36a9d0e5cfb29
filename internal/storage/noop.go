package storage

import "github.com/modernmen/concierge/internal/types"

// Store defines the storage interface
type Store interface {
	SaveConversationRecord(record types.ConversationRecord) error
	SaveTransferRecord(record types.TransferRecord) error
	GetConversationRecords(dateKey string) ([]types.ConversationRecord, error)
	GetTransferRecords(dateKey string) ([]types.TransferRecord, error)
	GetAgentTransfersByDate(agentID, date string) ([]types.TransferRecord, error)
	TruncateAll() error
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveConversationRecord(_ types.ConversationRecord) error { return nil }
func (s *NoopStore) SaveTransferRecord(_ types.TransferRecord) error         { return nil }
func (s *NoopStore) GetConversationRecords(_ string) ([]types.ConversationRecord, error) {
	return nil, nil
}
func (s *NoopStore) GetTransferRecords(_ string) ([]types.TransferRecord, error) { return nil, nil }
func (s *NoopStore) GetAgentTransfersByDate(_, _ string) ([]types.TransferRecord, error) {
	return nil, nil
}
func (s *NoopStore) TruncateAll() error { return nil }
