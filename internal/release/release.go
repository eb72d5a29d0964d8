// Package release implements the one-shot cutdown release latch: Lock,
// Release, and a diagnostic Wiggle, driven on top of a gpio.Actuator's
// single boolean output line.
//
// This mirrors the firmware's servo_release module one-for-one, with
// the hard-coded servo angles replaced by the boolean
// locked/released drive levels this core's actuator line actually uses
// (see internal/gpio and SPEC_FULL.md §4.12).
package release

import (
	"errors"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/gpio"
)

// State is a best-effort reflection of the last commanded drive level,
// not the actual mechanical position (mirrors servoReleaseGetState's
// "best-effort" doc comment).
type State uint8

const (
	Unknown State = iota
	Locked
	Released
)

func (s State) String() string {
	switch s {
	case Locked:
		return "LOCKED"
	case Released:
		return "RELEASED"
	default:
		return "UNKNOWN"
	}
}

// ErrAlreadyReleased is returned by Lock once the release latch has
// fired; the mechanism never re-arms until the next process start.
var ErrAlreadyReleased = errors.New("release: already released, cannot lock")

// Latch owns the one-shot release state machine for one actuator.
type Latch struct {
	actuator gpio.Actuator
	released bool
	state    State
}

// NewLatch returns a Latch driving act, commanded to Locked immediately
// — mirroring servoReleaseInit's unconditional initial lock command.
func NewLatch(act gpio.Actuator) (*Latch, error) {
	l := &Latch{actuator: act}
	if err := l.Lock(); err != nil {
		return nil, err
	}
	return l, nil
}

// Lock commands the mechanism to the locked position. It is rejected
// once Release has latched — the mechanism never re-arms.
func (l *Latch) Lock() error {
	if l.released {
		l.state = Released
		return ErrAlreadyReleased
	}
	if err := l.actuator.Drive(false); err != nil {
		return err
	}
	l.state = Locked
	return nil
}

// Release commands the mechanism to the released position and latches
// released = true. Calling it again is a safe no-op — idempotent once
// fired, matching servoReleaseRelease's "calling it multiple times is
// safe" contract.
func (l *Latch) Release() error {
	if l.released {
		return nil
	}
	if err := l.actuator.Drive(true); err != nil {
		return err
	}
	l.released = true
	l.state = Released
	return nil
}

// Wiggle performs a diagnostic release-then-lock motion. It must NOT
// set the release latch — it is a ground life-check only, and Lock
// inside it will fail with ErrAlreadyReleased if Release has already
// latched for real, exactly like servoReleaseWiggle's guard.
func (l *Latch) Wiggle() error {
	if err := l.actuator.Drive(true); err != nil {
		return err
	}
	return l.Lock()
}

// IsReleased reports whether the one-shot release latch has fired.
func (l *Latch) IsReleased() bool { return l.released }

// Status returns the best-effort last-commanded state.
func (l *Latch) Status() State { return l.state }
