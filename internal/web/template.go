package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ht680-rx/internal/status"
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
	"hex": func(v uint16) string {
		return fmt.Sprintf("0x%04X", v)
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.0f%%", f*100)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>HT680 Receiver</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.idle { color: #888; }
.reading { color: orange; font-weight: bold; }
.done { color: green; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.trinary { letter-spacing: 2px; }
</style>
</head>
<body>
<h1>HT680 Receiver</h1>

<h2>Decoder</h2>
<table>
<tr><th>State</th><td class="{{if eq .DecoderState "DONE"}}done{{else if eq .DecoderState "READING"}}reading{{else}}idle{{end}}">{{.DecoderState}}</td></tr>
{{if .LastFrame}}<tr><th>Last Frame</th><td class="trinary">{{.LastFrame.Trinary}}</td></tr>
<tr><th>Value</th><td>{{hex .LastFrame.Value}}</td></tr>
<tr><th>Z Mask</th><td>{{hex .LastFrame.ZMask}}</td></tr>
<tr><th>Received</th><td>{{.LastFrame.Time.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{else}}<tr><th>Last Frame</th><td>none yet</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Counters</h2>
<table>
<tr><th>Frames</th><td>{{.Counts.Frames}}</td></tr>
<tr><th>Glitches Filtered</th><td>{{.Counts.Glitches}}</td></tr>
<tr><th>Aborted Frames</th><td>{{.Counts.Aborts}}</td></tr>
<tr><th>Pilot Resyncs</th><td>{{.Counts.Resyncs}}</td></tr>
<tr><th>Edges Dropped</th><td>{{.EdgesDropped}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Chip</th><td>{{.Config.Chip}}</td></tr>
<tr><th>Oscillator</th><td>{{.Config.OscPreset}} ({{.Config.FoscKHz}} kHz)</td></tr>
<tr><th>Tolerance</th><td>{{pct .Config.Tolerance}}</td></tr>
<tr><th>Noise Filter</th><td>{{.Config.NoiseFilterUS}}&micro;s</td></tr>
<tr><th>Pin</th><td>GPIO{{.Config.Pin}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
