package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
)

// ErrQueueFull is returned by SendEvent when the per-tick batch is at capacity.
var ErrQueueFull = errors.New("event queue full")

// Runtime drives a core.System from a fixed-rate tick loop.
type Runtime struct {
	sys      *core.System
	tickRate time.Duration
	logger   *slog.Logger
	onError  func(error)
	ticker   *time.Ticker
	tickNum  uint64

	eventBatch  []EventWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	cancel  context.CancelFunc
	stopped chan struct{}
}

// Config configures the real-time runtime.
type Config struct {
	TickRate         time.Duration // default 16.67ms (60 FPS)
	MaxEventsPerTick int           // default 1000
	Logger           *slog.Logger
	OnError          func(error) // called with every dispatch error
}

// NewRuntime creates a runtime for sys. The system is not started or stopped
// by the runtime.
func NewRuntime(sys *core.System, cfg Config) *Runtime {
	if cfg.MaxEventsPerTick <= 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 16667 * time.Microsecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runtime{
		sys:        sys,
		tickRate:   cfg.TickRate,
		logger:     cfg.Logger,
		onError:    cfg.OnError,
		eventBatch: make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
	}
}

// System returns the driven system.
func (rt *Runtime) System() *core.System { return rt.sys }

// Start begins tick-based execution in a background goroutine.
func (rt *Runtime) Start(ctx context.Context) error {
	if rt.stopped != nil {
		return errors.New("realtime: runtime already started")
	}
	ctx, rt.cancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)
	rt.stopped = make(chan struct{})
	go rt.tickLoop(ctx)
	return nil
}

// Stop ends the tick loop and waits for it to exit. Queued events are discarded.
func (rt *Runtime) Stop() {
	if rt.cancel == nil {
		return
	}
	rt.cancel()
	<-rt.stopped
}

// Done is closed once the tick loop has exited.
func (rt *Runtime) Done() <-chan struct{} { return rt.stopped }

func (rt *Runtime) tickLoop(ctx context.Context) {
	defer close(rt.stopped)
	defer rt.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-rt.ticker.C:
			rt.safeStep(ctx)
		}
	}
}

func (rt *Runtime) safeStep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			rt.report(fmt.Errorf("realtime: panic in tick: %v", r))
		}
	}()
	rt.Step(ctx)
}

// Step processes one tick synchronously: due timers first, then the queued
// events in deterministic order.
func (rt *Runtime) Step(ctx context.Context) {
	if _, err := rt.sys.Tick(ctx); err != nil {
		rt.report(err)
	}
	events := rt.collectEvents()
	sortEvents(events)
	for _, e := range events {
		if err := rt.sys.Send(ctx, e.Event); err != nil {
			rt.report(fmt.Errorf("event %s: %w", e.Event.Type, err))
		}
	}
	rt.batchMu.Lock()
	rt.tickNum++
	rt.batchMu.Unlock()
}

func (rt *Runtime) report(err error) {
	rt.logger.Error("tick failed", "err", err)
	if rt.onError != nil {
		rt.onError(err)
	}
}

func (rt *Runtime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, cap(rt.eventBatch))
	return events
}

// SendEvent queues an event for the next tick.
func (rt *Runtime) SendEvent(event primitives.Event) error {
	return rt.SendEventWithPriority(event, 0)
}

// SendEventWithPriority queues an event with priority.
func (rt *Runtime) SendEventWithPriority(event primitives.Event, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	if len(rt.eventBatch) >= cap(rt.eventBatch) {
		return ErrQueueFull
	}
	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Event:       event,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// Send queues event; it lets a Runtime stand in wherever a System accepts
// events. The context is unused because nothing is dispatched here.
func (rt *Runtime) Send(_ context.Context, event primitives.Event) error {
	return rt.SendEvent(event)
}

// GetTickNumber returns the number of completed ticks.
func (rt *Runtime) GetTickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// Pending returns the number of queued events.
func (rt *Runtime) Pending() int {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return len(rt.eventBatch)
}
