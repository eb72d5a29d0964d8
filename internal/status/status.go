// Package status provides a thread-safe status tracker for the
// cutdown core, read by the HTTP status page. Adapted from the teacher's boiler-sensor status tracker:
// same RWMutex-guarded Snapshot/Tracker shape, generalized from
// CH/HW heating channel state to flight state, latches, fault
// severity, and release state.
package status

import (
	"sync"
	"time"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/faults"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flight"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/release"
)

// Config contains core configuration relevant for display.
type Config struct {
	SerialNumber uint32
	HTTPPort     string
	Broker       string
}

// Snapshot is a point-in-time view of the core's decision state. It is
// a value type — safe to use after the lock is released.
type Snapshot struct {
	FlightState    flight.State
	SystemMode     flight.Mode
	LaunchDetected bool
	CutFired       bool
	CutReason      flight.CutReason
	Terminated     bool
	ReleaseState   release.State

	FaultSeverity faults.Severity
	ActiveFaults  []faults.Source

	UplinkConnected bool

	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the core started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable core state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the flight/release/fault fields. Called once per tick
// from the core's tick orchestrator.
func (t *Tracker) Update(rt *flight.Runtime, rel *release.Latch, reg *faults.Registry) {
	t.mu.Lock()
	t.snap.FlightState = rt.FlightState
	t.snap.SystemMode = rt.SystemMode
	t.snap.LaunchDetected = rt.LaunchDetected
	t.snap.CutFired = rt.CutFired
	t.snap.CutReason = rt.CutReason
	t.snap.Terminated = rt.Terminated
	if rel != nil {
		t.snap.ReleaseState = rel.Status()
	}
	if reg != nil {
		t.snap.FaultSeverity = reg.OverallSeverity()
		t.snap.ActiveFaults = reg.ActiveSources()
	}
	t.mu.Unlock()
}

// SetUplinkConnected sets the uplink connection status.
func (t *Tracker) SetUplinkConnected(connected bool) {
	t.mu.Lock()
	t.snap.UplinkConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the core's state. The Now
// field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
