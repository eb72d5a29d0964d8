package web

import (
	"encoding/json"
	"time"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/status"
)

// StatusJSON is the JSON representation of the core status page.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	FlightState    string     `json:"flight_state"`
	SystemMode     string     `json:"system_mode"`
	LaunchDetected bool       `json:"launch_detected"`
	CutFired       bool       `json:"cut_fired"`
	CutReason      string     `json:"cut_reason"`
	Terminated     bool       `json:"terminated"`
	ReleaseState   string     `json:"release_state"`
	UptimeSeconds  int64      `json:"uptime_seconds"`
	StartTime      string     `json:"start_time"`
	Timestamp      string     `json:"timestamp"`
	Uplink         UplinkJSON `json:"uplink"`
	Faults         FaultsJSON `json:"faults"`
	Config         ConfigJSON `json:"config"`
}

// UplinkJSON reports uplink connection state.
type UplinkJSON struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// FaultsJSON is the JSON representation of the active error registry.
type FaultsJSON struct {
	Severity string   `json:"severity"`
	Active   []string `json:"active"`
}

// ConfigJSON is the JSON representation of core config.
type ConfigJSON struct {
	SerialNumber uint32 `json:"serial_number"`
	HTTPPort     string `json:"http_port"`
	Broker       string `json:"broker"`
}

func formatJSON(snap status.Snapshot) []byte {
	active := make([]string, 0, len(snap.ActiveFaults))
	for _, s := range snap.ActiveFaults {
		active = append(active, s.String())
	}

	sj := StatusJSON{
		Status: StatusInner{
			FlightState:    snap.FlightState.String(),
			SystemMode:     snap.SystemMode.String(),
			LaunchDetected: snap.LaunchDetected,
			CutFired:       snap.CutFired,
			CutReason:      snap.CutReason.String(),
			Terminated:     snap.Terminated,
			ReleaseState:   snap.ReleaseState.String(),
			UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:      snap.Now.UTC().Format(time.RFC3339),
			Uplink:         UplinkJSON{Connected: snap.UplinkConnected, Broker: snap.Config.Broker},
			Faults: FaultsJSON{
				Severity: snap.FaultSeverity.String(),
				Active:   active,
			},
			Config: ConfigJSON{
				SerialNumber: snap.Config.SerialNumber,
				HTTPPort:     snap.Config.HTTPPort,
				Broker:       snap.Config.Broker,
			},
		},
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
