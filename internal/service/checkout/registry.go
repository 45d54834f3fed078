package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/metrics"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
)

// Registry holds live sessions by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idle     time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewRegistry(idle time.Duration, m *metrics.Metrics, l *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		idle:     idle,
		metrics:  m,
		logger:   logger.OrNop(l),
		now:      time.Now,
	}
}

func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.now())

	r.mu.Lock()
	r.sessions[s.id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	r.metrics.SetActiveSessions(n)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the configured duration. Sessions
// waiting on the booking API are kept.
func (r *Registry) Sweep() int {
	deadline := r.now().Add(-r.idle)

	r.mu.Lock()
	var removed int
	for id, s := range r.sessions {
		if !s.mu.TryLock() {
			continue
		}
		expired := !s.state.busy() && s.touchedAt.Before(deadline)
		s.mu.Unlock()
		if expired {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return removed
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				r.logger.Info("expired idle checkout sessions", zap.Int("count", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
