// Package termination implements the balloon-pop descent detector:
// peak-altitude / min-pressure tracking, a descent predicate, and a
// sustain counter that latches Terminated independent of any cut.
package termination

import (
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flight"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/readings"
)

// Evaluate runs one tick of descent detection. It only acts while
// flight_state == InFlight and terminated == false (spec.md §4.4); when
// cfg.Termination.Enabled is false, it does nothing at all. peak_alt_m
// and min_pressure_hpa live on rt (reset by SetLaunchDetected) since
// they are extrema over the whole flight, not detector-local state.
func Evaluate(snap *readings.Snapshot, rt *flight.Runtime, cfg config.TerminationConfig, nowMS uint32) {
	if rt.Terminated {
		return
	}
	if rt.FlightState != flight.InFlight {
		return
	}
	if !cfg.Enabled {
		return
	}

	gpsCondition := false
	pressureCondition := false

	if cfg.UseGPS {
		if altM, ok := snap.Value(config.VarGPSAltM); ok {
			if altM > rt.PeakAltM {
				rt.PeakAltM = altM
			}
			if rt.PeakAltM-altM >= cfg.GPSDropM {
				gpsCondition = true
			}
		}
	}

	if cfg.UsePressure {
		if pHPa, ok := snap.Value(config.VarPressureHPa); ok {
			if pHPa < rt.MinPressureHPa {
				rt.MinPressureHPa = pHPa
			}
			if pHPa-rt.MinPressureHPa >= cfg.PressureRiseHPa {
				pressureCondition = true
			}
		}
	}

	descentNow := gpsCondition || pressureCondition

	if descentNow {
		if rt.DescentCountS < 0xFFFF {
			rt.DescentCountS++
		}
	} else {
		rt.DescentCountS = 0
	}

	if rt.DescentCountS >= cfg.SustainS {
		rt.SetTerminated(nowMS)
	}
}
