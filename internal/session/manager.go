package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// ErrNotFound is returned for an unknown or ended session id
var ErrNotFound = errors.New("session not found")

// Manager keeps independent scan sessions keyed by id. Creating a session is
// the only way to start over with an empty serial set.
type Manager struct {
	opts []Option
	cfg  settings

	sessions   map[string]*Session
	sessionsMu sync.RWMutex

	// Metrics
	totalCreated int64
	totalEnded   int64
	metricsMu    sync.Mutex
}

// NewManager creates a manager; opts apply to every session it creates
func NewManager(opts ...Option) *Manager {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{
		opts:     opts,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session
func (m *Manager) Create() *Session {
	s := New(uuid.New().String(), m.opts...)

	m.sessionsMu.Lock()
	m.sessions[s.ID] = s
	total := len(m.sessions)
	m.sessionsMu.Unlock()

	m.metricsMu.Lock()
	m.totalCreated++
	m.metricsMu.Unlock()

	log.WithFields(log.Fields{
		"component":  "session",
		"session_id": s.ID,
		"active":     total,
	}).Info("session created")
	return s
}

// Get returns a live session
func (m *Manager) Get(id string) (*Session, bool) {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// End forgets a session and its serial set
func (m *Manager) End(id string) bool {
	m.sessionsMu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.sessionsMu.Unlock()

	if ok {
		m.metricsMu.Lock()
		m.totalEnded++
		m.metricsMu.Unlock()
		log.WithFields(log.Fields{"component": "session", "session_id": id}).Info("session ended")
	}
	return ok
}

// Scan delivers a frame to the named session
func (m *Manager) Scan(id, raw string) (models.ScanResult, error) {
	s, ok := m.Get(id)
	if !ok {
		return models.ScanResult{}, ErrNotFound
	}
	return s.Scan(raw), nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return len(m.sessions)
}

// Sweep ends sessions idle for longer than ttl and returns how many it ended
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := m.cfg.clock.Now().Add(-ttl)

	m.sessionsMu.RLock()
	var idle []string
	for id, s := range m.sessions {
		if s.LastActivity().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.sessionsMu.RUnlock()

	ended := 0
	for _, id := range idle {
		if m.End(id) {
			ended++
		}
	}
	return ended
}

// RunSweeper ends idle sessions every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(ttl); n > 0 {
				log.WithFields(log.Fields{
					"component": "session",
					"ended":     n,
					"active":    m.Count(),
				}).Info("idle sessions swept")
			}
		}
	}
}

// GetMetrics returns session metrics summed over live sessions
func (m *Manager) GetMetrics() map[string]interface{} {
	m.sessionsMu.RLock()
	var stats models.SessionStats
	for _, s := range m.sessions {
		st := s.Stats()
		stats.Frames += st.Frames
		stats.Filtered += st.Filtered
		stats.Debounced += st.Debounced
		stats.Duplicates += st.Duplicates
		stats.Incomplete += st.Incomplete
		stats.Accepted += st.Accepted
	}
	active := len(m.sessions)
	m.sessionsMu.RUnlock()

	m.metricsMu.Lock()
	totalCreated := m.totalCreated
	totalEnded := m.totalEnded
	m.metricsMu.Unlock()

	return map[string]interface{}{
		"active_sessions":  active,
		"total_created":    totalCreated,
		"total_ended":      totalEnded,
		"frames":           stats.Frames,
		"frames_filtered":  stats.Filtered,
		"frames_debounced": stats.Debounced,
		"duplicates":       stats.Duplicates,
		"incomplete":       stats.Incomplete,
		"accepted":         stats.Accepted,
		"debounce_ms":      m.cfg.debounce.Milliseconds(),
	}
}
