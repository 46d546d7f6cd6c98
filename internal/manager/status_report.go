package manager

import (
	"time"

	"paperd/pkg/types"
)

// Ready reports whether the backend has been built.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed && m.handle.Ready()
}

// Status builds the response for /status.
func (m *Manager) Status() types.StatusResponse {
	now := time.Now()
	return types.StatusResponse{
		Backend:        m.handle.Status(),
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

// ListModels returns a copy of the local model registry.
func (m *Manager) ListModels() []types.Model {
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}
