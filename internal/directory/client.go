package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/modernmen/concierge/internal/types"
	"github.com/rs/zerolog"
)

// Client talks to the external agent service. All failures degrade to safe
// defaults and are logged, never returned to routing callers.
type Client struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient creates an agent service client
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "agent_client").Logger(),
	}
}

// LoadAgents fetches the agent roster into the directory. On any failure it
// falls back to the built-in mock roster so the service stays operable
// offline.
func (c *Client) LoadAgents(ctx context.Context, dir *Directory) {
	agents, err := c.fetchAgents(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to load agents, using mock roster")
		agents = MockRoster()
	}

	for _, agent := range agents {
		dir.Upsert(agent)
	}
	c.logger.Info().Int("agents", len(agents)).Msg("agent roster loaded")
}

func (c *Client) fetchAgents(ctx context.Context) ([]types.Agent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/agents", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent service returned %d", resp.StatusCode)
	}

	var agents []types.Agent
	if err := json.NewDecoder(resp.Body).Decode(&agents); err != nil {
		return nil, fmt.Errorf("failed to decode agents: %w", err)
	}
	return agents, nil
}

// PushStatus persists an agent status change to the agent service.
// Errors are logged only; the local directory remains authoritative.
func (c *Client) PushStatus(ctx context.Context, agentID string, status types.AgentStatus) {
	body, _ := json.Marshal(map[string]string{"status": string(status)})

	url := fmt.Sprintf("%s/agents/%s/status", c.baseURL, agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error().Err(err).Str("agent_id", agentID).Msg("failed to build status request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("agent_id", agentID).Msg("failed to push agent status")
		return
	}
	resp.Body.Close()
}

// TransferNotification is the payload sent to an agent on a transfer request
type TransferNotification struct {
	Type           string `json:"type"`
	TransferID     string `json:"transferId"`
	ConversationID string `json:"conversationId"`
	Reason         string `json:"reason"`
	Priority       string `json:"priority"`
}

// Notify sends a transfer request notification to an agent. Fire and
// forget: failures are logged and swallowed.
func (c *Client) Notify(ctx context.Context, agentID string, notification TransferNotification) {
	body, err := json.Marshal(notification)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to marshal notification")
		return
	}

	url := fmt.Sprintf("%s/agents/%s/notify", c.baseURL, agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error().Err(err).Str("agent_id", agentID).Msg("failed to build notify request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("agent_id", agentID).Msg("failed to notify agent")
		return
	}
	resp.Body.Close()
}
