package system

import (
	"context"
	"fmt"

	"github.com/lunaredge/storefront/pkg/logger"
)

// Manager starts registered services in order and stops them in reverse.
type Manager struct {
	services []Service
	started  []Service
	log      *logger.Logger
}

// NewManager creates an empty manager.
func NewManager(log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewDefault("system")
	}
	return &Manager{log: log}
}

// Register appends a service to the start order.
func (m *Manager) Register(svc Service) {
	m.services = append(m.services, svc)
}

// Start starts every registered service. On failure the already-started
// services are stopped in reverse before the error is returned.
func (m *Manager) Start(ctx context.Context) error {
	for _, svc := range m.services {
		if err := svc.Start(ctx); err != nil {
			m.log.WithError(err).WithField("service", svc.Name()).Error("service failed to start")
			m.stopStarted(ctx)
			return fmt.Errorf("start %s: %w", svc.Name(), err)
		}
		m.started = append(m.started, svc)
		m.log.WithField("service", svc.Name()).Info("service started")
	}
	return nil
}

// Stop stops all started services in reverse order. Stop errors are logged,
// not returned, so every service gets its shutdown chance.
func (m *Manager) Stop(ctx context.Context) {
	m.stopStarted(ctx)
}

func (m *Manager) stopStarted(ctx context.Context) {
	for i := len(m.started) - 1; i >= 0; i-- {
		svc := m.started[i]
		if err := svc.Stop(ctx); err != nil {
			m.log.WithError(err).WithField("service", svc.Name()).Warn("service failed to stop")
			continue
		}
		m.log.WithField("service", svc.Name()).Info("service stopped")
	}
	m.started = nil
}
