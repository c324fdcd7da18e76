package core

import "time"

// TransitionInfo describes one microstep that changed the active configuration.
type TransitionInfo struct {
	Actor     string
	Machine   string
	Event     string
	From      string
	To        string
	Automatic bool
}

// UnhandledEvent describes an event no active state had an enabled candidate for.
type UnhandledEvent struct {
	Actor   string
	Machine string
	State   string
	Event   Event
}

// ActorInfo identifies an actor at spawn or stop.
type ActorInfo struct {
	ID      string
	Machine string
}

// TimerInfo describes a delayed transition timer that fired.
type TimerInfo struct {
	Actor    string
	Event    string
	Deadline time.Time
}

// DispatchInfo describes one completed dispatch on one actor, excluding the
// deliveries it caused.
type DispatchInfo struct {
	Actor    string
	Machine  string
	Event    string
	Handled  bool
	Duration time.Duration
	Err      error
}

// Observer receives runtime notifications. Calls happen synchronously inside the
// turn lock; implementations must not call back into the System.
type Observer interface {
	OnTransition(TransitionInfo)
	OnUnhandled(UnhandledEvent)
	OnSpawn(ActorInfo)
	OnStop(ActorInfo)
	OnTimer(TimerInfo)
	OnDispatch(DispatchInfo)
}

// NopObserver ignores everything. Embed it to implement a subset of Observer.
type NopObserver struct{}

func (NopObserver) OnTransition(TransitionInfo) {}
func (NopObserver) OnUnhandled(UnhandledEvent)  {}
func (NopObserver) OnSpawn(ActorInfo)           {}
func (NopObserver) OnStop(ActorInfo)            {}
func (NopObserver) OnTimer(TimerInfo)           {}
func (NopObserver) OnDispatch(DispatchInfo)     {}

// MultiObserver fans out to every observer in order.
type MultiObserver []Observer

func (m MultiObserver) OnTransition(i TransitionInfo) {
	for _, o := range m {
		o.OnTransition(i)
	}
}

func (m MultiObserver) OnUnhandled(u UnhandledEvent) {
	for _, o := range m {
		o.OnUnhandled(u)
	}
}

func (m MultiObserver) OnSpawn(i ActorInfo) {
	for _, o := range m {
		o.OnSpawn(i)
	}
}

func (m MultiObserver) OnStop(i ActorInfo) {
	for _, o := range m {
		o.OnStop(i)
	}
}

func (m MultiObserver) OnTimer(i TimerInfo) {
	for _, o := range m {
		o.OnTimer(i)
	}
}

func (m MultiObserver) OnDispatch(i DispatchInfo) {
	for _, o := range m {
		o.OnDispatch(i)
	}
}
