// Package core wires every collaborator package into the cutdown core's
// single 1 Hz decision tick, in the exact ordering the firmware this
// core was distilled from uses in its loop(): advance time, pull
// readings, evaluate launch and termination, decide whether to cut
// (external input, then remote, then rule-based — first match wins),
// actuate, then publish status/telemetry/log. A user-initiated cut
// from the config UI is a separate out-of-band entry point, ManualCut,
// since the firmware this core is grounded on has no such path — it
// was added by the configuration surface this core supports that the
// original instrument never exposed.
package core

import (
	"time"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/faults"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flight"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flightlog"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/gpio"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/launch"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/metrics"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/readings"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/release"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/rules"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/sensors"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/status"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/telemetry"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/termination"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/uplink"
)

// Core owns every collaborator the tick orchestrator touches. Nothing
// outside this package calls into any one collaborator directly once a
// Core exists — Tick, ManualCut and HandleUplinkCommand are the only
// entry points.
type Core struct {
	Config *config.SystemConfig

	Runtime  *flight.Runtime
	Readings *readings.Snapshot
	Faults   *faults.Registry
	Launch   *launch.Detector
	Rules    *rules.Engine
	Release  *release.Latch
	Mailbox  *uplink.Mailbox

	GPIO    gpio.Reader
	Sensors sensors.Reader

	FlightLog flightlog.Writer
	Uplink    uplink.Publisher

	Status  *status.Tracker
	Metrics *metrics.Collector

	lastTxS  uint32
	everSent bool
}

// New assembles a Core from its collaborators. cfg and rel must be
// non-nil; the rest may be nil in tests that don't exercise that
// concern (Status/Metrics/FlightLog/Uplink all tolerate a nil
// receiver or absent writer the way their own packages document).
func New(cfg *config.SystemConfig, initialMode flight.Mode, gpioReader gpio.Reader, sensorReader sensors.Reader, rel *release.Latch, logWriter flightlog.Writer, publisher uplink.Publisher, statusTracker *status.Tracker, metricsCollector *metrics.Collector) *Core {
	return &Core{
		Config:    cfg,
		Runtime:   flight.New(initialMode),
		Readings:  readings.NewSnapshot(),
		Faults:    faults.NewRegistry(),
		Launch:    launch.NewDetector(),
		Rules:     rules.NewEngine(),
		Release:   rel,
		Mailbox:   uplink.NewMailbox(),
		GPIO:      gpioReader,
		Sensors:   sensorReader,
		FlightLog: logWriter,
		Uplink:    publisher,
		Status:    statusTracker,
		Metrics:   metricsCollector,
	}
}

// HandleUplinkCommand is the uplink.CommandHandler this core registers
// with its Subscriber. It runs on the Subscriber's own delivery
// goroutine (the paho client callback for a RealClient), concurrently
// with the tick goroutine — it must never read or write flight.Runtime
// or anything else the tick owns, only hand the raw message to the
// Mailbox, which is safe for concurrent use on its own. The cut_fired
// || terminated suppression still applies, but it happens inside
// evaluateCut, single-threaded with every other tick decision.
func (c *Core) HandleUplinkCommand(msg string) {
	c.Mailbox.Accept(msg, c.Config.Device, c.Config.Uplink)
}

// Tick runs one decision cycle at wall-clock time now and
// boot-relative millisecond nowMS, advancing the tick-domain clock by
// dtS seconds — the elapsed-seconds value a clock.Scheduler.Tick call
// reports, so a caller that fell behind a deadline advances the flight
// clock by the true elapsed time instead of drifting silently. Mirrors
// the firmware main.cpp loop()'s ordering:
// stateOn1HzTick, readingsUpdate1Hz, stateUpdateTerminationDetector1Hz,
// iridiumUpdate1Hz (folded here into the uplink mailbox already having
// been fed by HandleUplinkCommand), cutLogicEvaluate1Hz, then the
// physical actuation and logging/telemetry tail. While in Config mode
// the core still advances its clock and publishes status but makes no
// flight decisions — autonomous behavior is paused, not reset.
func (c *Core) Tick(now time.Time, nowMS uint32, dtS uint16) error {
	c.Runtime.AdvanceTime(dtS)

	if c.Runtime.SystemMode == flight.Config {
		c.publish(now, nowMS)
		return nil
	}

	rawInputs, gpioErr := c.readExternalInputs()
	sample, sensorErr := c.readSensors(now)
	c.updateFaults(sensorErr, gpioErr, sample)

	c.Readings.Update(sample, c.Config, c.Runtime.TPowerS, c.Runtime.TLaunchS, rawInputs)

	c.Launch.Evaluate(c.Readings, c.Runtime, c.Faults, nowMS)
	termination.Evaluate(c.Readings, c.Runtime, c.Config.Termination, nowMS)

	c.evaluateCut(nowMS)

	var tickErr error
	if sensorErr != nil {
		tickErr = sensorErr
	} else if gpioErr != nil {
		tickErr = gpioErr
	}

	c.publish(now, nowMS)
	return tickErr
}

// ManualCut fires a user-initiated cut from the configuration UI
// (spec.md §4.6 step 4). There is no firmware analogue: the original
// instrument never exposed an operator-triggered cut, so this path is
// wired directly to the release latch rather than layered into the
// per-tick priority chain Tick runs. It is a no-op once cut_fired is
// already latched.
func (c *Core) ManualCut(nowMS uint32) error {
	if c.Runtime.CutFired {
		return nil
	}
	c.Runtime.SetCutFired(flight.CutReasonManual, nowMS)
	if c.Metrics != nil {
		c.Metrics.ObserveCut(flight.CutReasonManual)
	}
	if c.Release == nil {
		return nil
	}
	return c.Release.Release()
}

// evaluateCut implements the cut priority chain: external input first,
// then remote (mailbox edge), then rule-based — first match wins, and
// once cut_fired is already latched nothing here runs at all, matching
// cutLogicEvaluate1Hz's unconditional early return. It also applies the
// cut_fired || terminated suppression remote-cut commands need:
// HandleUplinkCommand cannot check Runtime itself (it runs on a
// different goroutine), so Accept always latches an authorized edge and
// this tick-side check drops it once the flight has already concluded,
// terminated without a cut included.
func (c *Core) evaluateCut(nowMS uint32) {
	if c.Runtime.CutFired || c.Runtime.Terminated {
		return
	}

	reason, shouldCut := c.decideCut()
	if !shouldCut {
		return
	}

	c.Runtime.SetCutFired(reason, nowMS)
	if c.Metrics != nil {
		c.Metrics.ObserveCut(reason)
	}
	if c.Release != nil {
		c.Release.Release()
	}
}

func (c *Core) decideCut() (flight.CutReason, bool) {
	for i, in := range c.Config.ExternalInputs {
		if !in.Enabled {
			continue
		}
		if c.Readings.Ext[i].DebouncedActive {
			return flight.CutReasonExternalInput, true
		}
	}

	if c.Mailbox.TakeRemoteCutRequested() {
		return flight.CutReasonIridiumRemote, true
	}

	if c.Rules.Evaluate(c.Config, c.Readings, c.Runtime.LaunchDetected) {
		return flight.CutReasonBucketLogic, true
	}

	return flight.CutReasonNone, false
}

// readExternalInputs pulls the raw cut-input levels. A read error
// leaves rawInputs at its zero value (all LOW) for this tick — a
// stuck-LOW reading never spuriously triggers an active-high input.
func (c *Core) readExternalInputs() ([config.NumExternalInputs]bool, error) {
	var rawInputs [config.NumExternalInputs]bool
	if c.GPIO == nil {
		return rawInputs, nil
	}
	levels, err := c.GPIO.Read()
	if err != nil {
		return rawInputs, err
	}
	for i := 0; i < config.NumExternalInputs && i < len(levels); i++ {
		rawInputs[i] = levels[i]
	}
	return rawInputs, nil
}

// readSensors pulls one environmental/GPS sample. A read error yields
// a zero-value Sample — every field invalid — so readings.Update
// invalidates the corresponding variables rather than feeding stale
// or garbage values into the rule engine.
func (c *Core) readSensors(now time.Time) (sensors.Sample, error) {
	if c.Sensors == nil {
		return sensors.Sample{}, nil
	}
	sample, err := c.Sensors.Read(now)
	if err != nil {
		return sensors.Sample{}, err
	}
	return sample, nil
}

// updateFaults latches or clears the env-sensor and GPS-link fault
// sources from this tick's read outcomes, the local-recovery half of
// spec.md §7 error handling: a sensor read failure promotes
// faults.EnvSensor to active, and the condition clears the instant a
// read succeeds again. GPS link tracks fix validity specifically
// (rather than the whole-sample read error) since a sensor read can
// succeed while the GPS module itself has no fix or a stale one.
func (c *Core) updateFaults(sensorErr, gpioErr error, sample sensors.Sample) {
	if sensorErr != nil {
		c.Faults.Set(faults.EnvSensor, c.Runtime.TPowerS)
	} else {
		c.Faults.Clear(faults.EnvSensor)
	}

	if sample.GPSFixValid {
		c.Faults.Clear(faults.GPSLink)
	} else {
		c.Faults.Set(faults.GPSLink, c.Runtime.TPowerS)
	}

	if gpioErr != nil {
		c.Faults.Set(faults.Unspecified, c.Runtime.TPowerS)
	} else {
		c.Faults.Clear(faults.Unspecified)
	}
}

// publish updates the status tracker and metrics, writes one
// flightlog record, and sends a telemetry payload when due — the
// tail of every tick, run whether or not a decision fired and
// (minus the log/telemetry/decision-dependent parts) even in Config
// mode, mirroring the firmware's status-LED/SD-log updates that run
// every loop iteration regardless of should_cut.
func (c *Core) publish(now time.Time, nowMS uint32) {
	if c.Status != nil {
		c.Status.Update(c.Runtime, c.Release, c.Faults)
	}
	if c.Metrics != nil {
		c.Metrics.ObserveTick(c.Runtime.SystemMode)
		c.Metrics.ObserveFaults(c.Faults)
	}

	if c.Runtime.SystemMode == flight.Config {
		return
	}

	if c.FlightLog != nil {
		rec := flightlog.BuildRecord(c.Runtime, c.Readings)
		c.FlightLog.Write(rec)
	}

	c.publishTelemetryIfDue(now)
}

func (c *Core) publishTelemetryIfDue(now time.Time) {
	if c.Uplink == nil {
		return
	}

	intervalS := telemetry.IntervalS(c.Config.Uplink, c.Runtime)
	if !telemetry.Due(intervalS, c.Runtime.TPowerS, c.lastTxS, c.everSent) {
		return
	}

	payload, err := telemetry.FormatPayload(now, c.Config.Device.SerialNumber, c.Runtime, c.Readings)
	if err != nil {
		return
	}
	if err := c.Uplink.PublishTelemetry(payload); err != nil {
		c.Faults.Set(faults.UplinkModem, c.Runtime.TPowerS)
		return
	}
	c.Faults.Clear(faults.UplinkModem)
	c.lastTxS = c.Runtime.TPowerS
	c.everSent = true
}
