// Package metrics exposes Prometheus counters and gauges for the cutdown
// core's tick health, cut decisions, and active faults. Grounded on
// Cizor-spacetime-constellation-sim's internal/observability collector:
// same register-against-a-Registerer-or-default pattern, same
// already-registered tolerance. Exposure goes through
// promhttp.HandlerFor on the collector's own gatherer.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/faults"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flight"
)

// Collector bundles the core's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks *prometheus.CounterVec
	Cuts  *prometheus.CounterVec

	ErrorsActive *prometheus.GaugeVec
}

// NewCollector registers the core's metrics against reg, defaulting to
// the global Prometheus registry when reg is nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skyguard_ticks_total",
		Help: "Total number of core decision ticks processed, labeled by system mode.",
	}, []string{"mode"})
	ticks, err := registerCounterVec(reg, ticks, "skyguard_ticks_total")
	if err != nil {
		return nil, err
	}

	cuts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skyguard_cuts_total",
		Help: "Total number of release-cut decisions fired, labeled by cut reason.",
	}, []string{"reason"})
	cuts, err = registerCounterVec(reg, cuts, "skyguard_cuts_total")
	if err != nil {
		return nil, err
	}

	errorsActive := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skyguard_errors_active",
		Help: "Whether an error source is currently latched active (1) or clear (0), labeled by source.",
	}, []string{"source"})
	errorsActive, err = registerGaugeVec(reg, errorsActive, "skyguard_errors_active")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Ticks:        ticks,
		Cuts:         cuts,
		ErrorsActive: errorsActive,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveTick increments the tick counter for the given system mode.
func (c *Collector) ObserveTick(mode flight.Mode) {
	if c == nil || c.Ticks == nil {
		return
	}
	c.Ticks.WithLabelValues(mode.String()).Inc()
}

// ObserveCut increments the cut counter for the given cut reason. Callers
// invoke this exactly once, at the tick the cut latch first sets.
func (c *Collector) ObserveCut(reason flight.CutReason) {
	if c == nil || c.Cuts == nil {
		return
	}
	c.Cuts.WithLabelValues(reason.String()).Inc()
}

// ObserveFaults sets the errors-active gauge for every registry source
// to reflect the registry's current latched state.
func (c *Collector) ObserveFaults(reg *faults.Registry) {
	if c == nil || c.ErrorsActive == nil || reg == nil {
		return
	}
	for _, src := range []faults.Source{
		faults.EnvSensor,
		faults.StorageMissing,
		faults.StorageIO,
		faults.GPSLink,
		faults.UplinkModem,
		faults.Unspecified,
	} {
		value := 0.0
		if reg.Active(src) {
			value = 1.0
		}
		c.ErrorsActive.WithLabelValues(src.String()).Set(value)
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
