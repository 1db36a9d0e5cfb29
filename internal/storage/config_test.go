package storage

import (
	"os"
	"testing"
)

func TestLoadDynamoConfigDefaults(t *testing.T) {
	os.Clearenv()

	cfg := LoadDynamoConfig()
	if cfg.Mode != DynamoModeNone {
		t.Errorf("expected mode none, got %s", cfg.Mode)
	}
	if cfg.ConversationsTable != "concierge-conversations" {
		t.Errorf("unexpected conversations table %s", cfg.ConversationsTable)
	}
	if cfg.TransfersTable != "concierge-transfers" {
		t.Errorf("unexpected transfers table %s", cfg.TransfersTable)
	}
}

func TestLoadDynamoConfigModes(t *testing.T) {
	tests := []struct {
		env  string
		want DynamoMode
	}{
		{"local", DynamoModeLocal},
		{"aws", DynamoModeAWS},
		{"none", DynamoModeNone},
		{"garbage", DynamoModeNone},
		{"", DynamoModeNone},
	}

	for _, tt := range tests {
		os.Clearenv()
		if tt.env != "" {
			os.Setenv("DYNAMO_MODE", tt.env)
		}
		if got := LoadDynamoConfig().Mode; got != tt.want {
			t.Errorf("DYNAMO_MODE=%q: expected %s, got %s", tt.env, tt.want, got)
		}
	}
}
