package health

import (
	"sync"
	"time"
)

// Monitor holds the latest status of every rendered screen. Screens appear
// after their first completed render.
type Monitor struct {
	mu      sync.RWMutex
	screens map[string]Status
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{screens: make(map[string]Status)}
}

// Update records status for screen, replacing the previous one. The status
// is stamped with the screen name and, when unset, the current time.
func (m *Monitor) Update(screen string, status Status) {
	status.Component = screen
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.screens[screen] = status
	m.mu.Unlock()
}

// Get returns the latest status of screen.
func (m *Monitor) Get(screen string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.screens[screen]
	return status, ok
}

// AggregateHealth rolls every screen status up under systemName. With no
// screens rendered yet the system is healthy.
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	subs := make([]Status, 0, len(m.screens))
	for _, status := range m.screens {
		subs = append(subs, status)
	}
	m.mu.RUnlock()

	return Aggregate(systemName, subs)
}
