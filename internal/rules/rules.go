// Package rules implements the bucket-based declarative comparison DSL:
// per-condition dwell accumulators, Bucket A (AND, empty => true) and
// Bucket B (OR, empty => false), and the global launch/GPS-fix gates
// that block rule-based cut and reset dwell while blocked.
//
// This package does not decide should_cut on its own — external input
// and remote cut take priority over it (see internal/core, spec.md
// §4.6). It only answers "do the configured rules currently say cut".
package rules

import (
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/readings"
)

// Engine holds the dwell accumulators for both buckets. Accumulators are
// runtime state, never persisted config (mirrors cut_logic.cpp keeping
// g_bucketA_true_s/g_bucketB_true_s file-local rather than in settings).
type Engine struct {
	accumA [config.MaxBucketConditions]float32
	accumB [config.MaxBucketConditions]float32
}

// NewEngine returns an Engine with every dwell accumulator at zero.
func NewEngine() *Engine {
	return &Engine{}
}

// ResetAccumulators clears every dwell accumulator without touching
// configuration, mirroring cutLogicResetAccumulators.
func (e *Engine) ResetAccumulators() {
	e.accumA = [config.MaxBucketConditions]float32{}
	e.accumB = [config.MaxBucketConditions]float32{}
}

func compare(lhs float32, op config.Op, rhs float32) bool {
	switch op {
	case config.OpLT:
		return lhs < rhs
	case config.OpLTE:
		return lhs <= rhs
	case config.OpEQ:
		return lhs == rhs
	case config.OpGTE:
		return lhs >= rhs
	case config.OpGT:
		return lhs > rhs
	default:
		return false
	}
}

// evalCondition evaluates one condition against the current snapshot and
// updates its dwell accumulator in place, per spec.md §4.5.
func evalCondition(c config.Condition, snap *readings.Snapshot, accum *float32) bool {
	value, valid := snap.Value(c.VarID)
	if !valid || !readings.Finite(value) || !readings.Finite(c.Threshold) {
		*accum = 0
		return false
	}

	if !compare(value, c.Op, c.Threshold) {
		*accum = 0
		return false
	}

	if c.ForSeconds == 0 {
		*accum = 0
		return true
	}

	*accum++
	return *accum >= float32(c.ForSeconds)
}

// evalBucketA returns true when every enabled condition in conds is
// satisfied. An empty (or all-disabled) bucket evaluates true.
func evalBucketA(conds []config.Condition, accum *[config.MaxBucketConditions]float32, snap *readings.Snapshot) bool {
	for i, c := range conds {
		if i >= config.MaxBucketConditions {
			break
		}
		if !c.Enabled {
			accum[i] = 0
			continue
		}
		if !evalCondition(c, snap, &accum[i]) {
			return false
		}
	}
	return true
}

// evalBucketB returns true when any enabled condition in conds is
// satisfied. An empty (or all-disabled) bucket evaluates false.
//
// Unlike the firmware's early-return on the first true condition, this
// evaluates every enabled condition every tick so every dwell
// accumulator advances consistently — matching the corresponding
// comment in cut_logic.cpp ("Keep evaluating ... or return early for
// efficiency") but choosing the other branch, since Go has no
// microcontroller cycle budget to protect and skipped accumulators
// would give inconsistent dwell readouts on a status page.
func evalBucketB(conds []config.Condition, accum *[config.MaxBucketConditions]float32, snap *readings.Snapshot) bool {
	anyEnabled := false
	anyTrue := false
	for i, c := range conds {
		if i >= config.MaxBucketConditions {
			break
		}
		if !c.Enabled {
			accum[i] = 0
			continue
		}
		anyEnabled = true
		if evalCondition(c, snap, &accum[i]) {
			anyTrue = true
		}
	}
	if !anyEnabled {
		return false
	}
	return anyTrue
}

// globalsAllow reports whether the configured gates permit a rule-based
// cut this tick.
func globalsAllow(cfg config.GlobalCutdownConfig, launchDetected, gpsFixPresent bool) bool {
	if cfg.RequireLaunchBeforeCut && !launchDetected {
		return false
	}
	if cfg.RequireGPSFixBeforeCut && !gpsFixPresent {
		return false
	}
	return true
}

// Evaluate runs one tick of bucket-based rule evaluation. It returns
// true only when the global gates pass and both buckets are true. When
// the gates block, every dwell accumulator is reset to zero this tick —
// dwell may not accrue under gating (spec.md §4.5).
func (e *Engine) Evaluate(cfg *config.SystemConfig, snap *readings.Snapshot, launchDetected bool) bool {
	if !globalsAllow(cfg.GlobalCutdown, launchDetected, snap.GPSFixPresent()) {
		e.ResetAccumulators()
		return false
	}

	aOK := evalBucketA(cfg.BucketA, &e.accumA, snap)
	bOK := evalBucketB(cfg.BucketB, &e.accumB, snap)
	return aOK && bOK
}
