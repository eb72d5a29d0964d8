// Package flight holds the core's runtime state: the orthogonal
// FlightState/SystemMode pair, the one-shot latches (launch, cut,
// termination), and the tick-domain timers derived from them.
//
// This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Time enters only as already-elapsed tick seconds.
package flight

// State is the physical-reality state machine: what the balloon is doing.
// Transitions are monotonic: Ground -> InFlight -> Terminated, never reverse.
type State uint8

const (
	Ground State = iota
	InFlight
	Terminated
)

func (s State) String() string {
	switch s {
	case Ground:
		return "GROUND"
	case InFlight:
		return "IN_FLIGHT"
	case Terminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Mode is the firmware behavior mode: what the MCU is doing. Orthogonal to
// State — entering Config does not change State, it only pauses autonomous
// decision-making (see internal/core).
type Mode uint8

const (
	Normal Mode = iota
	Config
)

func (m Mode) String() string {
	if m == Config {
		return "CONFIG"
	}
	return "NORMAL"
}

// CutReason records why the release fired. Meaningful only when the
// runtime's CutFired latch is set.
type CutReason uint8

const (
	CutReasonNone CutReason = iota
	CutReasonBucketLogic
	CutReasonExternalInput
	CutReasonIridiumRemote
	CutReasonManual
)

func (r CutReason) String() string {
	switch r {
	case CutReasonNone:
		return "NONE"
	case CutReasonBucketLogic:
		return "BUCKET_LOGIC"
	case CutReasonExternalInput:
		return "EXTERNAL_INPUT"
	case CutReasonIridiumRemote:
		return "IRIDIUM_REMOTE"
	case CutReasonManual:
		return "MANUAL"
	default:
		return "UNKNOWN"
	}
}

// Runtime is the single owner of all volatile flight decision state. It is
// reset only at power-on (see New); nothing in this package ever clears a
// latch once set.
type Runtime struct {
	FlightState State
	SystemMode  Mode

	// Tick-domain seconds since boot. Advanced by AdvanceTime, never by
	// reading wall time directly.
	TPowerS uint32

	LaunchDetected bool
	LaunchMS       uint32
	TLaunchS       uint32

	CutFired  bool
	CutReason CutReason
	CutMS     uint32

	Terminated    bool
	TerminatedMS  uint32
	TTerminatedS  uint32

	// PeakAltM and MinPressureHPa are monotone extrema tracked by the
	// termination detector while InFlight; reset on launch.
	PeakAltM       float32
	MinPressureHPa float32

	// DescentCountS is the consecutive-second counter the termination
	// detector maintains; reset on launch and whenever the descent
	// predicate is false.
	DescentCountS uint16
}

// New returns a Runtime in its power-on-safe posture: Ground/Normal, every
// latch clear.
func New(initialMode Mode) *Runtime {
	return &Runtime{
		FlightState: Ground,
		SystemMode:  initialMode,
	}
}

// AdvanceTime applies dtS elapsed tick-seconds to the tick-domain timers.
// Call this once per tick, before any latch-setting logic runs, mirroring
// stateOn1HzTick in the firmware this core was distilled from.
func (r *Runtime) AdvanceTime(dtS uint16) {
	if dtS == 0 {
		dtS = 1
	}
	r.TPowerS += uint32(dtS)

	if r.LaunchDetected {
		r.TLaunchS += uint32(dtS)
	} else {
		r.TLaunchS = 0
	}

	if r.Terminated {
		r.TTerminatedS += uint32(dtS)
	} else {
		r.TTerminatedS = 0
	}
}

// RecomputeFlightState applies invariant 2/3 of the data model: termination
// dominates in-flight, which dominates ground. Call after any latch update
// within the same tick.
func (r *Runtime) RecomputeFlightState() {
	switch {
	case r.Terminated:
		r.FlightState = Terminated
	case r.LaunchDetected:
		r.FlightState = InFlight
	default:
		r.FlightState = Ground
	}
}

// SetLaunchDetected latches launch_detected exactly once. Calling it again
// is a no-op — only the first launch_ms is ever recorded (§8 round-trip
// law). Resets the in-flight extrema so the termination detector starts
// clean.
func (r *Runtime) SetLaunchDetected(nowMS uint32) bool {
	if r.LaunchDetected {
		return false
	}
	r.LaunchDetected = true
	r.LaunchMS = nowMS
	r.TLaunchS = 0
	r.PeakAltM = negInf
	r.MinPressureHPa = posInf
	r.DescentCountS = 0
	r.RecomputeFlightState()
	return true
}

// SetTerminated latches termination exactly once, whether caused by a cut
// or a natural balloon-pop detection.
func (r *Runtime) SetTerminated(nowMS uint32) bool {
	if r.Terminated {
		return false
	}
	r.Terminated = true
	r.TerminatedMS = nowMS
	r.TTerminatedS = 0
	r.RecomputeFlightState()
	return true
}

// SetCutFired latches the cut decision exactly once, and — per invariant 1
// — always implies termination: a cut always latches Terminated in the
// same call.
func (r *Runtime) SetCutFired(reason CutReason, nowMS uint32) bool {
	if r.CutFired {
		return false
	}
	r.CutFired = true
	r.CutReason = reason
	r.CutMS = nowMS
	r.SetTerminated(nowMS)
	return true
}

// SetSystemMode changes the orthogonal system mode. It never touches
// FlightState or any latch.
func (r *Runtime) SetSystemMode(mode Mode) {
	r.SystemMode = mode
}

const (
	negInf = float32(-1e9)
	posInf = float32(1e9)
)
