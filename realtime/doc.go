// Package realtime provides a tick-based host loop for a core.System.
//
// External events are not dispatched when they arrive. They are batched and
// processed at fixed tick boundaries, in a deterministic order, after the
// delayed-transition timers that came due during the tick:
//
//	sys, _ := core.NewSystem(def)
//	rt := realtime.NewRuntime(sys, realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	rt.Start(ctx)
//	rt.SendEvent(primitives.NewEvent("ACCEPT_BOX", nil))
//
// # Event Ordering Guarantees
//
// Events are ordered deterministically using:
//  1. Priority (higher priority processed first)
//  2. Sequence number (FIFO for same priority)
//
// Given the same sequence of SendEvent calls between ticks, the system always
// executes the same way regardless of goroutine scheduling. Step runs one tick
// synchronously, which makes scenarios reproducible in tests.
package realtime
