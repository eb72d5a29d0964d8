// Package clock implements the core's deadline-based 1 Hz scheduler.
//
// The core never reads wall time directly inside a tick. Instead main
// samples a monotonic millisecond counter once per loop wakeup and hands
// it to Scheduler.Tick, which decides whether a tick is due and, if so,
// how many seconds elapsed since the last one. This is the Go analogue of
// stateTick1Hz in the firmware this core was distilled from: deadline
// arithmetic, not a free-running ticker, so a stalled loop catches up by
// emitting a single tick with a larger elapsed count rather than a burst.
package clock

// Scheduler tracks the next 1 Hz deadline in a wrap-safe way. The zero
// value is ready to use; the first call to Tick always returns false and
// establishes the baseline deadline.
type Scheduler struct {
	initialized  bool
	nextTickMS   uint32
	lastElapsedS uint16
}

// NewScheduler returns a Scheduler with no established deadline yet. The
// first Tick call seeds the deadline one second out and reports not-due.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Tick reports whether a 1 Hz tick is due as of nowMS (a monotonic
// millisecond counter — wraps are handled via signed 32-bit subtraction,
// matching the firmware's (int32_t)(now_ms - next_tick_ms) comparison).
// When due, it returns the number of whole seconds elapsed since the
// previous deadline (always >= 1, clamped to uint16), and advances the
// deadline by that amount so a stall doesn't cause drift or a burst of
// queued ticks.
func (s *Scheduler) Tick(nowMS uint32) (due bool, elapsedS uint16) {
	if !s.initialized {
		s.initialized = true
		s.nextTickMS = nowMS + 1000
		s.lastElapsedS = 0
		return false, 0
	}

	if int32(nowMS-s.nextTickMS) < 0 {
		return false, 0
	}

	elapsed := uint32(1) + (nowMS-s.nextTickMS)/1000
	s.nextTickMS += elapsed * 1000

	// A stall longer than 10s snaps the deadline back to now+1000 rather
	// than let the next comparison keep chasing an arbitrarily stale
	// deadline; this bounds how long a single bad wakeup can skew
	// subsequent tick timing.
	if elapsed > 10 {
		s.nextTickMS = nowMS + 1000
	}

	if elapsed > 0xFFFF {
		elapsed = 0xFFFF
	}
	s.lastElapsedS = uint16(elapsed)

	return true, s.lastElapsedS
}

// LastElapsedS returns the elapsed-seconds value computed by the most
// recent due Tick. It is 0 before the first due tick.
func (s *Scheduler) LastElapsedS() uint16 {
	return s.lastElapsedS
}
