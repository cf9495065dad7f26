package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/metrics"
)

type orphanDeleter interface {
	DeleteOrphans(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes quizzes that never received a question, such
// as a batch target abandoned before its first insert.
type Sweeper struct {
	repo     orphanDeleter
	schedule string
	grace    time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSweeper(repo orphanDeleter, schedule string, grace time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		schedule: schedule,
		grace:    grace,
		metrics:  m,
		logger:   logger.With().Str("component", "orphan_sweeper").Logger(),
		now:      time.Now,
	}
}

// Sweep runs one pass and returns the number of deleted quizzes.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.grace)
	n, err := s.repo.DeleteOrphans(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete orphan quizzes: %w", err)
	}
	s.metrics.OrphansDeleted(n)
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("orphan quizzes removed")
	}
	return n, nil
}

// Run schedules Sweep and blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error().Err(err).Msg("orphan sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("orphan sweeper started")

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info().Msg("orphan sweeper stopped")
	return ctx.Err()
}
