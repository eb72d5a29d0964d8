// Package launch implements the Ground -> InFlight detector: independent
// baseline capture per sensor, a GPS-altitude-rise-or-pressure-drop
// candidate predicate, and 5-tick persistence before latching.
package launch

import (
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/faults"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flight"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/readings"
)

// altRiseM and pressureDropM are the firmware's LAUNCH_GPS_ALT_RISE_M /
// LAUNCH_PRESSURE_DROP_HPA constants, reproduced verbatim from spec.md
// §4.3.
const (
	altRiseM      = 30.0
	pressureDropM = 5.0
)

// persistRequiredTicks is the number of consecutive candidate-true ticks
// required before the detector latches (spec.md §4.3: "5 consecutive
// ticks").
const persistRequiredTicks = 5

// Detector tracks launch-detection baselines and candidate persistence.
// It does nothing once the runtime's LaunchDetected latch is already
// set — baselines and the persistence counter exist only to decide the
// single moment that latch flips.
type Detector struct {
	baseGPSValid bool
	baseGPSAltM  float32

	basePressureValid bool
	basePressureHPa   float32

	persistTicks uint8
}

// NewDetector returns a Detector with no baselines captured yet.
func NewDetector() *Detector {
	return &Detector{}
}

// Evaluate runs one tick of launch detection. It is a no-op once
// rt.LaunchDetected is already true. Disabled entirely while any
// Critical fault is active (sensors must be healthy before a baseline
// can be trusted) — per spec.md §4.3 and §7.
func (d *Detector) Evaluate(snap *readings.Snapshot, rt *flight.Runtime, reg *faults.Registry, nowMS uint32) {
	if rt.LaunchDetected {
		return
	}

	if reg.AnyCriticalActive() {
		d.persistTicks = 0
		return
	}

	if altM, ok := snap.Value(config.VarGPSAltM); ok && !d.baseGPSValid {
		d.baseGPSAltM = altM
		d.baseGPSValid = true
	}
	if pHPa, ok := snap.Value(config.VarPressureHPa); ok && !d.basePressureValid {
		d.basePressureHPa = pHPa
		d.basePressureValid = true
	}

	candidate := false

	if d.baseGPSValid {
		if altM, ok := snap.Value(config.VarGPSAltM); ok {
			if altM-d.baseGPSAltM >= altRiseM {
				candidate = true
			}
		}
	}
	if d.basePressureValid {
		if pHPa, ok := snap.Value(config.VarPressureHPa); ok {
			if d.basePressureHPa-pHPa >= pressureDropM {
				candidate = true
			}
		}
	}

	if candidate {
		if d.persistTicks < 255 {
			d.persistTicks++
		}
	} else {
		d.persistTicks = 0
	}

	if d.persistTicks >= persistRequiredTicks {
		rt.SetLaunchDetected(nowMS)
	}
}
