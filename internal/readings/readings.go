// Package readings produces the core's per-tick snapshot of the physical
// world: sensor values with validity bits, and debounced external-input
// state. It is the "one place" (per readings.h) to inspect what the core
// currently believes is true, and the only source the rule engine reads
// variables from.
package readings

import (
	"math"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/sensors"
)

// extCapMS is the saturation cap on the external-input debounce
// accumulator, preventing wraparound if a line is held active for days.
const extCapMS = 60_000

// ExternalInputState is the runtime interpretation of one optoisolated
// cut input: the tick-quantized debounce model from spec.md §4.2.
type ExternalInputState struct {
	RawActive       bool
	DebouncedActive bool
	ActiveAccumMS   uint32
}

// Snapshot is the per-tick readings aggregate: one value+validity pair
// per config.VariableId, plus external-input debounce state. It is
// rebuilt every tick — nothing here is carried forward except the
// debounce accumulator and GPS-fix-present history implicit in
// validity.
type Snapshot struct {
	values [varCount]float32
	valid  [varCount]bool

	Ext [config.NumExternalInputs]ExternalInputState
}

// varCount mirrors config.VariableId's dense range so the parallel array
// can be indexed directly by the enum value.
const varCount = 9

// NewSnapshot returns a Snapshot with every variable invalid.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Value returns the current value of v and whether it is valid. Callers
// must always check validity before using the value — an invalid value
// is not meaningful (it is not necessarily zero).
func (s *Snapshot) Value(v config.VariableId) (float32, bool) {
	if !v.Valid() {
		return 0, false
	}
	return s.values[v], s.valid[v]
}

func (s *Snapshot) set(v config.VariableId, value float32) {
	s.values[v] = value
	s.valid[v] = true
}

func (s *Snapshot) invalidate(v config.VariableId) {
	s.valid[v] = false
}

// GPSFixPresent reports whether the current snapshot carries a usable
// GPS fix (VarGPSFix valid and nonzero), used by the rule engine's
// require_gps_fix_before_cut gate.
func (s *Snapshot) GPSFixPresent() bool {
	v, ok := s.Value(config.VarGPSFix)
	return ok && v != 0
}

// Update rebuilds the snapshot for one tick: time variables, sensor
// sample, and external-input debounce. Each call counts as one tick
// (1000ms) for the debounce accumulator. Time variables are supplied by
// the caller directly since they come from the flight runtime, not the
// sensor.
func (s *Snapshot) Update(sample sensors.Sample, cfg *config.SystemConfig, tPowerS, tLaunchS uint32, rawInputs [config.NumExternalInputs]bool) {
	// Time-domain variables are always valid (spec.md §4.2).
	s.set(config.VarTPowerS, float32(tPowerS))
	s.set(config.VarTLaunchS, float32(tLaunchS))

	if sample.GPSAltValid {
		s.set(config.VarGPSAltM, sample.GPSAltM)
	} else {
		s.invalidate(config.VarGPSAltM)
	}
	if sample.GPSLatValid {
		s.set(config.VarGPSLatDeg, sample.GPSLatDeg)
	} else {
		s.invalidate(config.VarGPSLatDeg)
	}
	if sample.GPSLonValid {
		s.set(config.VarGPSLonDeg, sample.GPSLonDeg)
	} else {
		s.invalidate(config.VarGPSLonDeg)
	}
	if sample.GPSFixValid {
		if sample.GPSFix {
			s.set(config.VarGPSFix, 1)
		} else {
			s.set(config.VarGPSFix, 0)
		}
	} else {
		s.invalidate(config.VarGPSFix)
	}

	if sample.PressureValid {
		s.set(config.VarPressureHPa, sample.PressureHPa)
	} else {
		s.invalidate(config.VarPressureHPa)
	}
	if sample.TempValid {
		s.set(config.VarTempC, sample.TempC)
	} else {
		s.invalidate(config.VarTempC)
	}
	if sample.HumidityValid {
		s.set(config.VarHumidityPct, sample.HumidityPct)
	} else {
		s.invalidate(config.VarHumidityPct)
	}

	for i := range s.Ext {
		s.updateExternalInput(i, cfg.ExternalInputs[i], rawInputs[i])
	}
}

// updateExternalInput applies the tick-quantized debounce model: +=1000ms
// per tick the (polarity-mapped) input is active, saturating at extCapMS;
// reset to 0 the instant it goes inactive.
func (s *Snapshot) updateExternalInput(idx int, cfg config.ExternalInputConfig, rawLevel bool) {
	e := &s.Ext[idx]

	if !cfg.Enabled {
		*e = ExternalInputState{}
		return
	}

	active := rawLevel == cfg.ActiveHigh
	e.RawActive = active

	if active {
		e.ActiveAccumMS += 1000
		if e.ActiveAccumMS > extCapMS {
			e.ActiveAccumMS = extCapMS
		}
	} else {
		e.ActiveAccumMS = 0
	}

	e.DebouncedActive = active && e.ActiveAccumMS >= uint32(cfg.DebounceMS)
}

// finite reports whether f is neither NaN nor infinite, used by the rule
// engine when deciding whether a variable reading can satisfy a
// condition.
func finite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite exposes finite for use by internal/rules without duplicating
// the check.
func Finite(f float32) bool { return finite(f) }
