// Package telemetry selects the current transmit interval from flight
// phase and formats the telemetry payload sent to the uplink
// collaborator, replacing the firmware's Iridium SBD CSV message with a
// JSON document in the teacher's encoding/json style.
package telemetry

import (
	"encoding/json"
	"time"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flight"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/readings"
)

// IntervalS selects the transmit interval for the current tick from
// flight phase, mirroring currentTxIntervalS: Ground while not
// launched, Ascent while launched and not terminated, then Descent or
// Beacon depending on how long ago termination happened relative to
// descent_duration_s. A descent_duration_s of 0 means "go straight to
// beacon" — the firmware's own documented behavior for that value.
func IntervalS(cfg config.UplinkConfig, rt *flight.Runtime) uint32 {
	if !rt.LaunchDetected {
		return cfg.GroundIntervalS
	}
	if !rt.Terminated {
		return cfg.AscentIntervalS
	}

	if cfg.DescentDurationS == 0 {
		return cfg.BeaconIntervalS
	}
	if rt.TTerminatedS <= cfg.DescentDurationS {
		return cfg.DescentIntervalS
	}
	return cfg.BeaconIntervalS
}

// Due reports whether a transmission is due this tick: the interval is
// nonzero (zero disables transmission in that phase) and either no
// transmission has happened yet or at least intervalS has elapsed
// since the last one, both measured in tick-domain seconds.
func Due(intervalS uint32, tPowerS uint32, lastTxS uint32, everSent bool) bool {
	if intervalS == 0 {
		return false
	}
	if !everSent {
		return true
	}
	return tPowerS-lastTxS >= intervalS
}

// OptionalFloat marshals as a JSON number when Valid, or null
// otherwise — the JSON-native analogue of the firmware's "NA" sentinel
// and spec.md's "encoded as sentinel NaN" instruction (JSON has no NaN
// literal, so null is the faithful equivalent here).
type OptionalFloat struct {
	Value float32
	Valid bool
}

func (f OptionalFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func opt(v float32, ok bool) OptionalFloat {
	return OptionalFloat{Value: v, Valid: ok}
}

// Payload is the per-tick telemetry document sent to the uplink
// collaborator, covering the same fields as the firmware's compact CSV
// message plus the flight-state label the firmware sent as a bare enum
// ordinal.
type Payload struct {
	Timestamp   string        `json:"timestamp"`
	SerialNum   uint32        `json:"serial_number"`
	TPowerS     uint32        `json:"t_power_s"`
	FlightState string        `json:"flight_state"`
	Lat         OptionalFloat `json:"lat"`
	Lon         OptionalFloat `json:"lon"`
	AltM        OptionalFloat `json:"alt_m"`
	TempC       OptionalFloat `json:"temp_c"`
	PressureHPa OptionalFloat `json:"pressure_hpa"`
	HumidityPct OptionalFloat `json:"humidity_pct"`
	CutFired    bool          `json:"cut_fired"`
	CutReason   string        `json:"cut_reason"`
}

// FormatPayload builds the telemetry JSON payload for the current
// tick, mirroring doTelemetrySendAndReceive's field set.
func FormatPayload(now time.Time, serial uint32, rt *flight.Runtime, snap *readings.Snapshot) ([]byte, error) {
	lat, latOK := snap.Value(config.VarGPSLatDeg)
	lon, lonOK := snap.Value(config.VarGPSLonDeg)
	alt, altOK := snap.Value(config.VarGPSAltM)
	temp, tempOK := snap.Value(config.VarTempC)
	pres, presOK := snap.Value(config.VarPressureHPa)
	hum, humOK := snap.Value(config.VarHumidityPct)

	p := Payload{
		Timestamp:   now.UTC().Format(time.RFC3339),
		SerialNum:   serial,
		TPowerS:     rt.TPowerS,
		FlightState: rt.FlightState.String(),
		Lat:         opt(lat, latOK),
		Lon:         opt(lon, lonOK),
		AltM:        opt(alt, altOK),
		TempC:       opt(temp, tempOK),
		PressureHPa: opt(pres, presOK),
		HumidityPct: opt(hum, humOK),
		CutFired:    rt.CutFired,
		CutReason:   rt.CutReason.String(),
	}
	return json.Marshal(p)
}
