package session

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/ticketcode"
)

// Session turns a stream of raw camera frames into at most one accepted
// decode per physical ticket. Frames pass, in order, an input filter, the
// debounce window, the serial dedup set, and finally decode and validity.
type Session struct {
	ID        string
	CreatedAt time.Time

	settings

	mu           sync.Mutex
	lastAccepted time.Time
	lastActivity time.Time
	serials      map[string]struct{}
	lastResult   *models.ScanResult
	stats        models.SessionStats
}

// New creates a session with an empty serial set
func New(id string, opts ...Option) *Session {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	now := cfg.clock.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		settings:     cfg,
		lastActivity: now,
		serials:      make(map[string]struct{}),
	}
}

// Scan processes one raw frame. Filter rejections leave the debounce time and
// the serial set untouched and are only returned to the caller; decoded
// results also go to the sink.
func (s *Session) Scan(raw string) models.ScanResult {
	now := s.clock.Now()
	result := models.ScanResult{SessionID: s.ID, ScannedAt: now}

	s.mu.Lock()
	s.stats.Frames++
	s.lastActivity = now

	if !ticketcode.AllDigits(raw) || len(raw) < ticketcode.HeaderLength {
		s.stats.Filtered++
		s.mu.Unlock()
		result.Reason = models.ScanNotTicketCode
		return result
	}

	if !s.lastAccepted.IsZero() && now.Sub(s.lastAccepted) < s.debounce {
		s.stats.Debounced++
		s.mu.Unlock()
		result.Reason = models.ScanDebounced
		return result
	}

	serial, _ := ticketcode.ExtractSerial(raw)
	if _, seen := s.serials[serial]; seen {
		s.stats.Duplicates++
		s.mu.Unlock()
		result.Reason = models.ScanDuplicate
		log.WithFields(log.Fields{
			"component":  "session",
			"session_id": s.ID,
			"serial":     serial,
		}).Debug("duplicate ticket ignored")
		return result
	}

	ticket, err := ticketcode.Decode(raw)
	if err == nil {
		err = ticketcode.Validate(ticket)
	}
	result.Ticket = ticket
	if err != nil {
		s.stats.Incomplete++
		result.Reason = models.ScanIncomplete
		result.Message = models.IncompleteMessage
		s.lastResult = &result
		s.mu.Unlock()

		log.WithFields(log.Fields{
			"component":  "session",
			"session_id": s.ID,
			"serial":     serial,
			"reason":     result.Reason,
		}).WithError(err).Debug("ticket could not be read")
		s.sink.Deliver(result)
		return result
	}

	s.lastAccepted = now
	s.serials[serial] = struct{}{}
	s.stats.Accepted++
	result.Accepted = true
	result.Reason = models.ScanAccepted
	result.Draft = models.DraftFromTicket(ticket, now)
	s.lastResult = &result
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"component":  "session",
		"session_id": s.ID,
		"serial":     serial,
		"buy_method": ticket.Header.BuyMethod.String(),
		"total":      result.Draft.TotalInvestment,
	}).Info("ticket accepted")
	s.sink.Deliver(result)
	s.sink.Confirm(s.ID)
	return result
}

// Reset re-arms the session for the next ticket. The debounce window and
// the last result are cleared; serials already accepted stay rejected.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccepted = time.Time{}
	s.lastResult = nil
	s.lastActivity = s.clock.Now()
}

// ClearError drops a failed last result and reports whether there was one
func (s *Session) ClearError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.clock.Now()
	if s.lastResult == nil || s.lastResult.Accepted {
		return false
	}
	s.lastResult = nil
	return true
}

// LastActivity returns when the session last saw a frame or command
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Stats returns a copy of the frame counters
func (s *Session) Stats() models.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Snapshot returns a point-in-time view of the session
func (s *Session) Snapshot() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := models.SessionState{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.lastActivity,
		SeenSerials:    len(s.serials),
		Stats:          s.stats,
	}
	if !s.lastAccepted.IsZero() {
		at := s.lastAccepted
		state.LastAcceptedAt = &at
	}
	if s.lastResult != nil {
		last := *s.lastResult
		state.LastResult = &last
		if !last.Accepted {
			state.Error = last.Message
		}
	}
	return state
}
