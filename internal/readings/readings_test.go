package readings

import (
	"testing"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/sensors"
)

func cfgWithInput0(debounceMS uint16, activeHigh bool) *config.SystemConfig {
	cfg := config.Defaults()
	cfg.ExternalInputs[0] = config.ExternalInputConfig{Enabled: true, ActiveHigh: activeHigh, DebounceMS: debounceMS}
	cfg.ExternalInputs[1] = config.ExternalInputConfig{Enabled: false}
	return cfg
}

func TestTimeVariablesAlwaysValid(t *testing.T) {
	s := NewSnapshot()
	s.Update(sensors.Sample{}, config.Defaults(), 10, 3, [config.NumExternalInputs]bool{})
	if v, ok := s.Value(config.VarTPowerS); !ok || v != 10 {
		t.Errorf("expected t_power_s=10 valid, got v=%v ok=%v", v, ok)
	}
	if v, ok := s.Value(config.VarTLaunchS); !ok || v != 3 {
		t.Errorf("expected t_launch_s=3 valid, got v=%v ok=%v", v, ok)
	}
}

func TestInvalidSensorFieldReportsInvalid(t *testing.T) {
	s := NewSnapshot()
	s.Update(sensors.Sample{GPSAltValid: false}, config.Defaults(), 0, 0, [config.NumExternalInputs]bool{})
	if _, ok := s.Value(config.VarGPSAltM); ok {
		t.Error("expected gps_alt_m invalid when sample reports invalid")
	}
}

func TestValidSensorFieldCarriesThrough(t *testing.T) {
	s := NewSnapshot()
	sample := sensors.Sample{GPSAltValid: true, GPSAltM: 12345.5}
	s.Update(sample, config.Defaults(), 0, 0, [config.NumExternalInputs]bool{})
	v, ok := s.Value(config.VarGPSAltM)
	if !ok || v != 12345.5 {
		t.Errorf("expected gps_alt_m=12345.5 valid, got v=%v ok=%v", v, ok)
	}
}

func TestGPSFixExposedAsZeroOneFloat(t *testing.T) {
	s := NewSnapshot()
	s.Update(sensors.Sample{GPSFixValid: true, GPSFix: true}, config.Defaults(), 0, 0, [config.NumExternalInputs]bool{})
	v, ok := s.Value(config.VarGPSFix)
	if !ok || v != 1 {
		t.Errorf("expected gps_fix=1, got v=%v ok=%v", v, ok)
	}
	if !s.GPSFixPresent() {
		t.Error("expected GPSFixPresent true")
	}
}

func TestExternalInputDisabledStaysClear(t *testing.T) {
	s := NewSnapshot()
	cfg := config.Defaults()
	cfg.ExternalInputs[0] = config.ExternalInputConfig{Enabled: false}
	s.Update(sensors.Sample{}, cfg, 0, 0, [config.NumExternalInputs]bool{true, false})
	if s.Ext[0].DebouncedActive || s.Ext[0].RawActive {
		t.Error("disabled input should never report active")
	}
}

func TestExternalInputDebounceAccumulatesAndTriggers(t *testing.T) {
	s := NewSnapshot()
	cfg := cfgWithInput0(2000, true) // 2s debounce = 2 ticks

	s.Update(sensors.Sample{}, cfg, 0, 0, [config.NumExternalInputs]bool{true, false})
	if s.Ext[0].DebouncedActive {
		t.Error("should not be debounced-active after 1 tick with 2s debounce")
	}
	if s.Ext[0].ActiveAccumMS != 1000 {
		t.Errorf("expected accum=1000, got %d", s.Ext[0].ActiveAccumMS)
	}

	s.Update(sensors.Sample{}, cfg, 1, 0, [config.NumExternalInputs]bool{true, false})
	if !s.Ext[0].DebouncedActive {
		t.Error("expected debounced-active after 2 ticks with 2s debounce")
	}
}

func TestExternalInputResetsOnInactive(t *testing.T) {
	s := NewSnapshot()
	cfg := cfgWithInput0(1000, true)
	s.Update(sensors.Sample{}, cfg, 0, 0, [config.NumExternalInputs]bool{true, false})
	s.Update(sensors.Sample{}, cfg, 1, 0, [config.NumExternalInputs]bool{false, false})
	if s.Ext[0].ActiveAccumMS != 0 || s.Ext[0].DebouncedActive {
		t.Errorf("expected reset to 0/inactive, got accum=%d debounced=%v", s.Ext[0].ActiveAccumMS, s.Ext[0].DebouncedActive)
	}
}

func TestExternalInputAccumulatorSaturates(t *testing.T) {
	s := NewSnapshot()
	cfg := cfgWithInput0(1000, true)
	for i := 0; i < 120; i++ {
		s.Update(sensors.Sample{}, cfg, uint32(i), 0, [config.NumExternalInputs]bool{true, false})
	}
	if s.Ext[0].ActiveAccumMS != extCapMS {
		t.Errorf("expected accumulator capped at %d, got %d", extCapMS, s.Ext[0].ActiveAccumMS)
	}
}

func TestExternalInputActiveLowPolarity(t *testing.T) {
	s := NewSnapshot()
	cfg := cfgWithInput0(1000, false) // active-low
	s.Update(sensors.Sample{}, cfg, 0, 0, [config.NumExternalInputs]bool{false, false})
	if !s.Ext[0].RawActive {
		t.Error("active-low input with raw LOW should report raw_active true")
	}
}

func TestFiniteRejectsNaNAndInf(t *testing.T) {
	zero := float32(0)
	if Finite(float32(1) / zero) {
		t.Error("positive infinity should not be finite")
	}
	nan := float32(0)
	nan = nan / nan
	if Finite(nan) {
		t.Error("NaN should not be finite")
	}
	if !Finite(42.0) {
		t.Error("42.0 should be finite")
	}
}
