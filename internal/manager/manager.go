package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"paperd/internal/backend"
	"paperd/internal/paper"
	"paperd/pkg/types"
)

// ManagerConfig encapsulates the collaborators of a Manager.
type ManagerConfig struct {
	Handle    *backend.Handle
	Assistant *paper.Assistant
	// Registry lists local GGUF models for GET /models.
	Registry []types.Model
	Logger   zerolog.Logger
}

type Manager struct {
	mu        sync.RWMutex
	handle    *backend.Handle
	assistant *paper.Assistant
	registry  []types.Model
	log       zerolog.Logger
	startTime time.Time
	closed    bool
}

// New constructs a Manager. Handle and Assistant are required.
func New(cfg ManagerConfig) (*Manager, error) {
	if cfg.Handle == nil || cfg.Assistant == nil {
		return nil, errors.New("manager: handle and assistant are required")
	}
	return &Manager{
		handle:    cfg.Handle,
		assistant: cfg.Assistant,
		registry:  append([]types.Model(nil), cfg.Registry...),
		log:       cfg.Logger,
		startTime: time.Now(),
	}, nil
}

// Preload builds the backend now instead of on the first request. Failures
// are logged and left for the next request to retry.
func (m *Manager) Preload(ctx context.Context) error {
	if err := m.handle.Load(ctx); err != nil {
		m.log.Warn().Err(err).Msg("backend preload failed")
		return err
	}
	return nil
}

// Close releases the backend. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	return m.handle.Close()
}
