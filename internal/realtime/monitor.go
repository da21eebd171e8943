// internal/realtime/monitor.go

package realtime

import (
	"context"
	"log"
	"time"
)

// Monitor sweeps the registry and evicts connections whose last heartbeat
// is older than the timeout. The timeout must exceed the heartbeat
// interval or healthy connections would be culled between beats; config
// validation enforces that.
type Monitor struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
}

func NewMonitor(registry *Registry, interval, timeout time.Duration) *Monitor {
	return &Monitor{
		registry: registry,
		interval: interval,
		timeout:  timeout,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Printf("Connection monitor started (interval %s, timeout %s)", m.interval, m.timeout)
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection monitor stopped")
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Monitor) sweep(now time.Time) {
	var evicted int
	for _, c := range m.registry.Snapshot() {
		if now.Sub(c.LastBeat()) > m.timeout {
			log.Printf("Connection %d for user %s missed heartbeats, evicting", c.id, c.userID)
			m.registry.Unregister(c)
			evicted++
		}
	}
	if evicted > 0 {
		evictionsTotal.Add(float64(evicted))
	}
}
