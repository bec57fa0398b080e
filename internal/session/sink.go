package session

import (
	"time"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// Sink receives every scan result that reached the decoder, accepted or
// not, and a haptic confirmation for each acceptance. Implementations must
// not block the session.
type Sink interface {
	Deliver(result models.ScanResult)
	Confirm(sessionID string)
}

// Sinks fans results out to several sinks in order
type Sinks []Sink

func (s Sinks) Deliver(result models.ScanResult) {
	for _, sink := range s {
		sink.Deliver(result)
	}
}

func (s Sinks) Confirm(sessionID string) {
	for _, sink := range s {
		sink.Confirm(sessionID)
	}
}

// Clock supplies the time used for debounce and activity tracking
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// DefaultDebounce is the window after an acceptance in which frames are ignored
const DefaultDebounce = 2000 * time.Millisecond

type settings struct {
	debounce time.Duration
	clock    Clock
	sink     Sink
}

func defaultSettings() settings {
	return settings{
		debounce: DefaultDebounce,
		clock:    systemClock{},
		sink:     Sinks(nil),
	}
}

// Option configures a Session or every session a Manager creates
type Option func(*settings)

// WithDebounce overrides the debounce window
func WithDebounce(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithClock injects the time source
func WithClock(c Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSink sets where results and confirmations go
func WithSink(sink Sink) Option {
	return func(s *settings) {
		if sink != nil {
			s.sink = sink
		}
	}
}
