package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"lower": strings.ToLower,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Skyguard Cutdown Core</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.flight-ground { color: #888; }
.flight-in_flight { color: green; font-weight: bold; }
.flight-terminated { color: darkorange; font-weight: bold; }
.fired { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.severity-critical { color: red; font-weight: bold; }
.severity-warn { color: darkorange; }
.severity-none { color: #888; }
</style>
</head>
<body>
<h1>Skyguard Cutdown Core</h1>

<h2>Flight</h2>
<table>
<tr><th>Flight state</th><td class="flight-{{lower .FlightStateStr}}">{{.FlightStateStr}}</td></tr>
<tr><th>System mode</th><td>{{.SystemModeStr}}</td></tr>
<tr><th>Launch detected</th><td>{{if .LaunchDetected}}yes{{else}}no{{end}}</td></tr>
<tr><th>Cut fired</th><td class="{{if .CutFired}}fired{{end}}">{{if .CutFired}}yes ({{.CutReasonStr}}){{else}}no{{end}}</td></tr>
<tr><th>Terminated</th><td>{{if .Terminated}}yes{{else}}no{{end}}</td></tr>
<tr><th>Release</th><td>{{.ReleaseStateStr}}</td></tr>
</table>

<h2>Faults</h2>
<table>
<tr><th>Severity</th><td class="severity-{{lower .FaultSeverityStr}}">{{.FaultSeverityStr}}</td></tr>
<tr><th>Active</th><td>{{if .ActiveFaultsStr}}{{.ActiveFaultsStr}}{{else}}none{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Uplink</th><td class="{{if .UplinkConnected}}connected{{else}}disconnected{{end}}">{{if .UplinkConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Serial number</th><td>{{.Config.SerialNumber}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// viewData flattens status.Snapshot's stringer fields into plain strings so
// the template can compare and lowercase them without method-call syntax.
type viewData struct {
	status.Snapshot
	Uptime           time.Duration
	FlightStateStr   string
	SystemModeStr    string
	CutReasonStr     string
	ReleaseStateStr  string
	FaultSeverityStr string
	ActiveFaultsStr  string
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	active := make([]string, 0, len(snap.ActiveFaults))
	for _, s := range snap.ActiveFaults {
		active = append(active, s.String())
	}

	data := viewData{
		Snapshot:         snap,
		Uptime:           snap.Uptime(),
		FlightStateStr:   snap.FlightState.String(),
		SystemModeStr:    snap.SystemMode.String(),
		CutReasonStr:     snap.CutReason.String(),
		ReleaseStateStr:  snap.ReleaseState.String(),
		FaultSeverityStr: snap.FaultSeverity.String(),
		ActiveFaultsStr:  strings.Join(active, ", "),
	}
	indexTmpl.Execute(w, data)
}
