// Package config loads and validates the cutdown core's SystemConfig
// aggregate from a YAML file, following the pattern in
// lkumar3-iitr-Sensor-Logger's utils/config_loader.go — read the whole
// file, unmarshal with gopkg.in/yaml.v3, wrap errors with context.
//
// SystemConfig is the Go-native analogue of the firmware's
// SettingsStorageBlob.config: everything the operator can set ahead of a
// flight, loaded once at boot and re-read only after a Config-mode
// reboot. Runtime accumulators (condition dwell, true_duration_s in the
// firmware) never live here — see internal/rules.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// VariableId identifies a rule-engine variable. Values are dense so a
// fixed-size parallel array can be indexed directly by the integer value
// (see internal/readings).
type VariableId uint8

const (
	VarTPowerS VariableId = iota
	VarTLaunchS
	VarGPSAltM
	VarGPSLatDeg
	VarGPSLonDeg
	VarGPSFix
	VarPressureHPa
	VarTempC
	VarHumidityPct
	varCount
)

func (v VariableId) Valid() bool { return v < varCount }

// Op is a condition's comparison operator.
type Op string

const (
	OpLT  Op = "lt"
	OpLTE Op = "lte"
	OpEQ  Op = "eq"
	OpGTE Op = "gte"
	OpGT  Op = "gt"
)

func (o Op) Valid() bool {
	switch o {
	case OpLT, OpLTE, OpEQ, OpGTE, OpGT:
		return true
	default:
		return false
	}
}

// MaxBucketConditions is the fixed capacity of Bucket A and Bucket B,
// matching the firmware's MAX_BUCKET_CONDITIONS.
const MaxBucketConditions = 10

// NumExternalInputs is the number of optoisolated cut inputs the core
// reads, matching the firmware's NUM_EXTERNAL_INPUTS.
const NumExternalInputs = 2

// Condition is one rule-engine comparison. The runtime dwell accumulator
// it pairs with at evaluation time is NOT part of this struct — it is
// owned by internal/rules, never persisted.
type Condition struct {
	Enabled    bool       `yaml:"enabled"`
	VarID      VariableId `yaml:"var_id"`
	Op         Op         `yaml:"op"`
	Threshold  float32    `yaml:"threshold"`
	ForSeconds uint16     `yaml:"for_seconds"`
}

// GlobalCutdownConfig gates rule-based cuts only; external-input and
// remote cuts bypass these gates entirely.
type GlobalCutdownConfig struct {
	RequireLaunchBeforeCut  bool `yaml:"require_launch_before_cut"`
	RequireGPSFixBeforeCut  bool `yaml:"require_gps_fix_before_cut"`
}

// ExternalInputConfig configures one optoisolated cut input.
type ExternalInputConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ActiveHigh bool   `yaml:"active_high"`
	DebounceMS uint16 `yaml:"debounce_ms"`
}

// UplinkConfig configures the remote-cut and telemetry-cadence behavior
// of the uplink collaborator. Named Uplink rather than the firmware's
// Iridium because this repository's concrete transport is MQTT, not a
// satellite modem — see DESIGN.md and SPEC_FULL.md §6.1; the fields and
// semantics otherwise match IridiumConfig exactly.
type UplinkConfig struct {
	Enabled          bool   `yaml:"enabled"`
	CutdownOnCommand bool   `yaml:"cutdown_on_command"`
	CutdownToken     string `yaml:"cutdown_token"`

	GroundIntervalS  uint32 `yaml:"ground_interval_s"`
	AscentIntervalS  uint32 `yaml:"ascent_interval_s"`
	DescentIntervalS uint32 `yaml:"descent_interval_s"`
	BeaconIntervalS  uint32 `yaml:"beacon_interval_s"`

	DescentDurationS uint32 `yaml:"descent_duration_s"`

	MailboxCheckIntervalS uint32 `yaml:"mailbox_check_interval_s"`
}

// DeviceConfig is device identity plus Config-mode AP credentials.
type DeviceConfig struct {
	SerialNumber uint32 `yaml:"serial_number"`
	APPassword   string `yaml:"ap_password"`
}

// TerminationConfig configures the balloon-pop descent detector.
type TerminationConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SustainS uint16 `yaml:"sustain_s"`

	GPSDropM        float32 `yaml:"gps_drop_m"`
	PressureRiseHPa float32 `yaml:"pressure_rise_hpa"`

	UseGPS      bool `yaml:"use_gps"`
	UsePressure bool `yaml:"use_pressure"`
}

// SystemConfig is the full user-editable configuration, loaded once at
// boot and re-read only after a Config-mode reboot.
type SystemConfig struct {
	GlobalCutdown GlobalCutdownConfig                      `yaml:"global_cutdown"`
	BucketA       []Condition                              `yaml:"bucket_a"`
	BucketB       []Condition                              `yaml:"bucket_b"`
	ExternalInputs [NumExternalInputs]ExternalInputConfig  `yaml:"external_inputs"`
	Uplink        UplinkConfig                             `yaml:"uplink"`
	Device        DeviceConfig                             `yaml:"device"`
	Termination   TerminationConfig                        `yaml:"termination"`
}

// Defaults returns the safe-defaults configuration spec.md §4.11
// requires when a loaded configuration is invalid: cut rules disabled
// (both buckets empty — Bucket A vacuously true, Bucket B vacuously
// false, so rule-based cut can never fire), external input 0 enabled
// active-high with 50 ms debounce, remote cut disabled, launch required,
// GPS fix not required.
func Defaults() *SystemConfig {
	return &SystemConfig{
		GlobalCutdown: GlobalCutdownConfig{
			RequireLaunchBeforeCut: true,
			RequireGPSFixBeforeCut: false,
		},
		ExternalInputs: [NumExternalInputs]ExternalInputConfig{
			{Enabled: true, ActiveHigh: true, DebounceMS: 50},
			{Enabled: false, ActiveHigh: true, DebounceMS: 50},
		},
		Uplink: UplinkConfig{
			Enabled:          false,
			CutdownOnCommand: false,
		},
		Device: DeviceConfig{
			SerialNumber: 0,
			APPassword:   "l33mange0",
		},
		Termination: TerminationConfig{
			Enabled: false,
		},
	}
}

// Load reads and validates a SystemConfig from a YAML file at path. On
// any read, parse, or validation error it returns Defaults() alongside
// the error describing what was wrong — callers decide whether to log
// and proceed (the core always gets a usable configuration either way).
func Load(path string) (*SystemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), fmt.Errorf("read config: %w", err)
	}

	var cfg SystemConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return Defaults(), fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// transmitIntervalValid reports whether a telemetry interval is either
// disabled (0) or within [10s, 7 days].
func transmitIntervalValid(s uint32) bool {
	const sevenDaysS = 7 * 24 * 60 * 60
	return s == 0 || (s >= 10 && s <= sevenDaysS)
}

// Validate checks cfg against every constraint spec.md §6 places on the
// configuration collaborator's output. It returns the first violation
// found.
func Validate(cfg *SystemConfig) error {
	if cfg.Device.SerialNumber > 9_999_999 {
		return fmt.Errorf("serial_number %d exceeds 9,999,999", cfg.Device.SerialNumber)
	}
	if len(cfg.Device.APPassword) < 8 {
		return fmt.Errorf("ap_password must be at least 8 characters")
	}

	if !transmitIntervalValid(cfg.Uplink.GroundIntervalS) {
		return fmt.Errorf("ground_interval_s %d out of range", cfg.Uplink.GroundIntervalS)
	}
	if !transmitIntervalValid(cfg.Uplink.AscentIntervalS) {
		return fmt.Errorf("ascent_interval_s %d out of range", cfg.Uplink.AscentIntervalS)
	}
	if !transmitIntervalValid(cfg.Uplink.DescentIntervalS) {
		return fmt.Errorf("descent_interval_s %d out of range", cfg.Uplink.DescentIntervalS)
	}
	if !transmitIntervalValid(cfg.Uplink.BeaconIntervalS) {
		return fmt.Errorf("beacon_interval_s %d out of range", cfg.Uplink.BeaconIntervalS)
	}
	if cfg.Uplink.DescentDurationS != 0 && cfg.Uplink.DescentDurationS < 10 {
		return fmt.Errorf("descent_duration_s %d must be 0 or >= 10", cfg.Uplink.DescentDurationS)
	}

	if len(cfg.BucketA) > MaxBucketConditions {
		return fmt.Errorf("bucket_a has %d conditions, max %d", len(cfg.BucketA), MaxBucketConditions)
	}
	if len(cfg.BucketB) > MaxBucketConditions {
		return fmt.Errorf("bucket_b has %d conditions, max %d", len(cfg.BucketB), MaxBucketConditions)
	}
	if err := validateConditions(cfg.BucketA, "bucket_a"); err != nil {
		return err
	}
	if err := validateConditions(cfg.BucketB, "bucket_b"); err != nil {
		return err
	}

	if cfg.Termination.UseGPS && !finite(cfg.Termination.GPSDropM) {
		return fmt.Errorf("termination.gps_drop_m must be finite")
	}
	if cfg.Termination.UsePressure && !finite(cfg.Termination.PressureRiseHPa) {
		return fmt.Errorf("termination.pressure_rise_hpa must be finite")
	}

	return nil
}

func validateConditions(conds []Condition, bucket string) error {
	for i, c := range conds {
		if !c.Enabled {
			continue
		}
		if !c.VarID.Valid() {
			return fmt.Errorf("%s[%d]: var_id %d out of range", bucket, i, c.VarID)
		}
		if !c.Op.Valid() {
			return fmt.Errorf("%s[%d]: op %q not in {lt,lte,eq,gte,gt}", bucket, i, c.Op)
		}
		if !finite(c.Threshold) {
			return fmt.Errorf("%s[%d]: threshold must be finite", bucket, i)
		}
		switch c.VarID {
		case VarGPSLatDeg:
			if c.Threshold < -90 || c.Threshold > 90 {
				return fmt.Errorf("%s[%d]: latitude threshold %v out of [-90, 90]", bucket, i, c.Threshold)
			}
		case VarGPSLonDeg:
			if c.Threshold < -180 || c.Threshold > 180 {
				return fmt.Errorf("%s[%d]: longitude threshold %v out of [-180, 180]", bucket, i, c.Threshold)
			}
		case VarHumidityPct:
			if c.Threshold < 0 || c.Threshold > 100 {
				return fmt.Errorf("%s[%d]: humidity threshold %v out of [0, 100]", bucket, i, c.Threshold)
			}
		}
	}
	return nil
}

func finite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
