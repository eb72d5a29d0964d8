package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	FlightState   string     `json:"flight_state"`
	SystemMode    string     `json:"system_mode"`
	LaunchDetected bool      `json:"launch_detected"`
	CutFired      bool       `json:"cut_fired"`
	CutReason     string     `json:"cut_reason"`
	Terminated    bool       `json:"terminated"`
	ReleaseState  string     `json:"release_state"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	Uplink        UplinkJSON `json:"uplink"`
	Faults        FaultsJSON `json:"faults"`
	Config        ConfigJSON `json:"config"`
}

// UplinkJSON reports uplink connection state.
type UplinkJSON struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// FaultsJSON is the JSON representation of the error registry's
// current overall state.
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

func buildInner(snap Snapshot) StatusInner {
	active := make([]string, 0, len(snap.ActiveFaults))
	for _, s := range snap.ActiveFaults {
		active = append(active, s.String())
	}

	return StatusInner{
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
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an uplink-published
// system lifecycle event (startup/shutdown/heartbeat).
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
