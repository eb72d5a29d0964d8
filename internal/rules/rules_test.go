package rules

import (
	"testing"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/readings"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/sensors"
)

func snapAlt(alt float32) *readings.Snapshot {
	s := readings.NewSnapshot()
	s.Update(sensors.Sample{GPSAltValid: true, GPSAltM: alt}, config.Defaults(), 0, 0, [config.NumExternalInputs]bool{})
	return s
}

// TestScenarioS1AltitudeTriggerWithDwell reproduces spec.md scenario S1
// verbatim: Bucket A empty, Bucket B has one condition (gps_alt_m >=
// 30000, for_seconds=10), gates both false. 5 ticks below threshold,
// then 10 ticks at/above it — cut fires on the 15th tick fed overall
// (the 10th consecutive true tick).
func TestScenarioS1AltitudeTriggerWithDwell(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{
		BucketB: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGTE, Threshold: 30000, ForSeconds: 10},
		},
	}

	for tick := 1; tick <= 5; tick++ {
		if e.Evaluate(cfg, snapAlt(29999), false) {
			t.Fatalf("tick %d: expected no cut below threshold", tick)
		}
	}

	fired := -1
	for tick := 6; tick <= 15; tick++ {
		if e.Evaluate(cfg, snapAlt(30000), false) {
			fired = tick
			break
		}
	}
	if fired != 15 {
		t.Fatalf("expected cut to fire at tick 15, got %d", fired)
	}
}

func TestConditionImmediateWhenForSecondsZero(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{
		BucketB: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGT, Threshold: 100, ForSeconds: 0},
		},
	}
	if !e.Evaluate(cfg, snapAlt(101), false) {
		t.Error("expected immediate satisfaction with for_seconds=0")
	}
}

func TestConditionResetsWhenVariableInvalid(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{
		BucketB: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGT, Threshold: 100, ForSeconds: 3},
		},
	}
	e.Evaluate(cfg, snapAlt(200), false)
	e.Evaluate(cfg, snapAlt(200), false)
	// third tick: variable goes invalid
	invalidSnap := readings.NewSnapshot()
	invalidSnap.Update(sensors.Sample{}, config.Defaults(), 0, 0, [config.NumExternalInputs]bool{})
	if e.Evaluate(cfg, invalidSnap, false) {
		t.Error("expected condition false when variable invalid")
	}
	if e.accumB[0] != 0 {
		t.Errorf("expected dwell reset to 0 on invalid variable, got %v", e.accumB[0])
	}
}

func TestBucketAEmptyIsTrue(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{
		BucketB: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGT, Threshold: 0, ForSeconds: 0},
		},
	}
	if !e.Evaluate(cfg, snapAlt(1), false) {
		t.Error("expected empty Bucket A to be vacuously true")
	}
}

func TestBucketBEmptyIsFalse(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{}
	if e.Evaluate(cfg, snapAlt(999999), false) {
		t.Error("expected empty Bucket B to be vacuously false, blocking any cut")
	}
}

func TestBucketAAllMustBeTrue(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{
		BucketA: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGT, Threshold: 100, ForSeconds: 0},
			{Enabled: true, VarID: config.VarPressureHPa, Op: config.OpLT, Threshold: 500, ForSeconds: 0},
		},
		BucketB: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGT, Threshold: 0, ForSeconds: 0},
		},
	}
	snap := readings.NewSnapshot()
	snap.Update(sensors.Sample{GPSAltValid: true, GPSAltM: 200, PressureValid: true, PressureHPa: 900}, config.Defaults(), 0, 0, [config.NumExternalInputs]bool{})
	if e.Evaluate(cfg, snap, false) {
		t.Error("expected Bucket A false: only one of two AND conditions is true")
	}
}

func TestGatingBlocksAndResetsDwell(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{
		GlobalCutdown: config.GlobalCutdownConfig{RequireLaunchBeforeCut: true},
		BucketB: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGT, Threshold: 0, ForSeconds: 5},
		},
	}
	e.accumB[0] = 3 // simulate accrued dwell before gate blocks

	if e.Evaluate(cfg, snapAlt(100), false) {
		t.Error("expected gate to block cut when launch not detected")
	}
	if e.accumB[0] != 0 {
		t.Errorf("expected dwell reset to 0 while gated, got %v", e.accumB[0])
	}
}

func TestGatingAllowsWhenLaunchDetected(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{
		GlobalCutdown: config.GlobalCutdownConfig{RequireLaunchBeforeCut: true},
		BucketB: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGT, Threshold: 0, ForSeconds: 0},
		},
	}
	if !e.Evaluate(cfg, snapAlt(100), true) {
		t.Error("expected cut allowed once launch_detected gate is satisfied")
	}
}

func TestGPSFixGate(t *testing.T) {
	e := NewEngine()
	cfg := &config.SystemConfig{
		GlobalCutdown: config.GlobalCutdownConfig{RequireGPSFixBeforeCut: true},
		BucketB: []config.Condition{
			{Enabled: true, VarID: config.VarGPSAltM, Op: config.OpGT, Threshold: 0, ForSeconds: 0},
		},
	}
	noFix := readings.NewSnapshot()
	noFix.Update(sensors.Sample{GPSAltValid: true, GPSAltM: 100, GPSFixValid: true, GPSFix: false}, config.Defaults(), 0, 0, [config.NumExternalInputs]bool{})
	if e.Evaluate(cfg, noFix, true) {
		t.Error("expected gate to block without GPS fix")
	}

	withFix := readings.NewSnapshot()
	withFix.Update(sensors.Sample{GPSAltValid: true, GPSAltM: 100, GPSFixValid: true, GPSFix: true}, config.Defaults(), 0, 0, [config.NumExternalInputs]bool{})
	if !e.Evaluate(cfg, withFix, true) {
		t.Error("expected cut allowed with GPS fix present")
	}
}

func TestResetAccumulators(t *testing.T) {
	e := NewEngine()
	e.accumA[0] = 5
	e.accumB[2] = 7
	e.ResetAccumulators()
	if e.accumA[0] != 0 || e.accumB[2] != 0 {
		t.Error("expected ResetAccumulators to zero all accumulators")
	}
}
