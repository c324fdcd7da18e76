package extensibility

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/riskbox/internal/primitives"
)

// EventSource produces external events for a System.
type EventSource interface {
	Events() <-chan primitives.Event
}

// Sender accepts events; *core.System and *realtime.Runtime satisfy it.
type Sender interface {
	Send(ctx context.Context, evt primitives.Event) error
}

// ChannelEventSource is an EventSource backed by a Go channel.
type ChannelEventSource struct {
	ch chan primitives.Event
}

// Events returns the receive-only channel for events.
func (s *ChannelEventSource) Events() <-chan primitives.Event {
	return s.ch
}

// NewChannelEventSource creates a new ChannelEventSource with the given channel.
func NewChannelEventSource(ch chan primitives.Event) *ChannelEventSource {
	return &ChannelEventSource{ch: ch}
}

// IntervalEventSource polls next on a fixed interval and emits whatever event
// it produces. Polls that yield nothing, or find the buffer full, are skipped.
type IntervalEventSource struct {
	ch     chan primitives.Event
	next   func() (primitives.Event, bool)
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

// NewIntervalEventSource starts polling next every d.
func NewIntervalEventSource(d time.Duration, next func() (primitives.Event, bool)) *IntervalEventSource {
	s := &IntervalEventSource{
		ch:     make(chan primitives.Event, 1),
		next:   next,
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *IntervalEventSource) run() {
	defer close(s.ch)
	defer s.ticker.Stop()
	for {
		select {
		case <-s.ticker.C:
			evt, ok := s.next()
			if !ok {
				continue
			}
			select {
			case s.ch <- evt:
			default:
			}
		case <-s.stop:
			return
		}
	}
}

// Events returns the event channel. It is closed after Stop.
func (s *IntervalEventSource) Events() <-chan primitives.Event {
	return s.ch
}

// Stop ends polling. It is safe to call more than once.
func (s *IntervalEventSource) Stop() {
	s.once.Do(func() { close(s.stop) })
}

// Pump forwards events from src to dst until the source closes or ctx is done.
// Send errors are logged and do not stop the pump.
func Pump(ctx context.Context, src EventSource, dst Sender, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if err := dst.Send(ctx, evt); err != nil {
				logger.WarnContext(ctx, "event rejected", "event", evt.Type, "err", err)
			}
		}
	}
}
