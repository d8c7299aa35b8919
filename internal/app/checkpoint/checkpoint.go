// Package checkpoint periodically re-flushes the authoritative in-memory
// state to the device store. Per-mutation persistence is best-effort and
// failures are swallowed, so the checkpoint closes the gap: a later
// successful write overwrites with current state.
package checkpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/internal/app/system"
	"github.com/lunaredge/storefront/pkg/logger"
)

// Service flushes session state on a cron schedule.
type Service struct {
	state    *state.Store
	schedule string
	cron     *cron.Cron
	log      *logger.Logger
}

var _ system.Service = (*Service)(nil)

// New creates a checkpoint service. The schedule uses cron syntax,
// e.g. "@every 30s".
func New(st *state.Store, schedule string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("checkpoint")
	}
	if schedule == "" {
		schedule = "@every 30s"
	}
	return &Service{state: st, schedule: schedule, log: log}
}

// Name implements system.Service.
func (s *Service) Name() string { return "checkpoint" }

// Start begins the periodic flush.
func (s *Service) Start(_ context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.flush); err != nil {
		return fmt.Errorf("checkpoint: bad schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.WithField("schedule", s.schedule).Info("checkpoint scheduler started")
	return nil
}

// Stop halts the scheduler and performs one final flush.
func (s *Service) Stop(ctx context.Context) error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
	if err := s.state.Flush(ctx); err != nil {
		return fmt.Errorf("checkpoint: final flush: %w", err)
	}
	return nil
}

func (s *Service) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.state.Flush(ctx); err != nil {
		s.log.WithError(err).Warn("periodic state flush failed")
	}
}
