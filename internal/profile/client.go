package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Profile is the subset of the external user profile the routing engine
// needs for user-history conditions.
type Profile struct {
	LoyaltyTier    string `json:"loyaltyTier"`
	TotalVisits    int    `json:"totalVisits"`
	ComplaintCount int    `json:"complaintCount"`
}

// Client looks up user profiles from the external user service.
// Any failure degrades to "tag not present" rather than an error.
type Client struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient creates a user profile client
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "profile_client").Logger(),
	}
}

// HasTag reports whether a user carries a history tag. Supported tags:
// vip (gold/platinum loyalty), frequent (>10 visits), new (<=2 visits),
// complainer (>0 complaints). Unknown users and lookup failures are false.
func (c *Client) HasTag(ctx context.Context, userID, tag string) bool {
	if userID == "" {
		return false
	}

	profile, err := c.fetch(ctx, userID)
	if err != nil {
		c.logger.Debug().Err(err).Str("user_id", userID).Msg("profile lookup failed")
		return false
	}

	switch tag {
	case "vip":
		return profile.LoyaltyTier == "gold" || profile.LoyaltyTier == "platinum"
	case "frequent":
		return profile.TotalVisits > 10
	case "new":
		return profile.TotalVisits <= 2
	case "complainer":
		return profile.ComplaintCount > 0
	default:
		return false
	}
}

func (c *Client) fetch(ctx context.Context, userID string) (*Profile, error) {
	url := fmt.Sprintf("%s/users/%s/profile", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user service returned %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}
