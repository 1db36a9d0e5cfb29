package sweeper

import (
	"context"
	"time"

	"github.com/modernmen/concierge/internal/conversation"
	"github.com/modernmen/concierge/internal/metrics"
	"github.com/rs/zerolog"
)

// Sweeper periodically removes stale inactive conversations
type Sweeper struct {
	manager  *conversation.Manager
	interval time.Duration
	maxAge   time.Duration
	logger   zerolog.Logger
}

// NewSweeper creates a new Sweeper
func NewSweeper(manager *conversation.Manager, interval, maxAge time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		manager:  manager,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Start begins the cleanup loop
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.interval).
		Dur("max_age", s.maxAge).
		Msg("sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweeper stopped")
			return

		case <-ticker.C:
			removed := s.manager.CleanupInactive(s.maxAge)
			if removed > 0 {
				metrics.Get().RecordSessionsSwept(removed)
				s.logger.Info().
					Int("removed", removed).
					Msg("swept inactive conversations")
			}
		}
	}
}
