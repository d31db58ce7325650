package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": formatUptime,
	"mode":   status.ModeString,
	"alert":  logic.AlertLabel,
}).Parse(indexHTML))

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Radiation Control Panel</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ALERT, .ACTIVE { color: #c00; font-weight: bold; }
.NORMAL, .CLEAR { color: green; }
.connected { color: green; }
.disconnected { color: red; }
a.button { display: inline-block; padding: 6px 14px; border: 1px solid #333; text-decoration: none; color: #000; }
</style>
</head>
<body>
<h1>Radiation Control Panel</h1>

<table>
<tr><th>Mode</th><td id="mode" class="{{mode .Mode}}">{{mode .Mode}}</td></tr>
<tr><th>Alert</th><td id="alert" class="{{alert .AlertActive}}">{{alert .AlertActive}}</td></tr>
<tr><th>Latest reading</th><td id="reading">{{.LastReading}}</td></tr>
</table>

<p><a class="button" href="/toggle">Toggle mode</a></p>

<h2>Counters</h2>
<table>
<tr><th>Samples read</th><td id="samples-read">{{.Counts.SamplesRead}}</td></tr>
<tr><th>Samples dropped</th><td id="samples-dropped">{{.Counts.SamplesDropped}}</td></tr>
<tr><th>Alerts posted</th><td>{{.Counts.AlertsPosted}}</td></tr>
<tr><th>Alerts dropped</th><td>{{.Counts.AlertsDropped}}</td></tr>
<tr><th>Alerts handled</th><td>{{.Counts.AlertsHandled}}</td></tr>
<tr><th>Mode flips</th><td>{{.Counts.ModeFlips}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}none{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Instance</th><td>{{.InstanceID}}</td></tr>
<tr><th>Threshold</th><td>{{.Config.Threshold}}</td></tr>
<tr><th>Sample</th><td>{{.Config.SampleMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
{{if .Config.Demo}}<tr><th>Demo</th><td>yes</td></tr>{{end}}
</table>

{{if .Tasks}}<h2>Tasks</h2>
<table>
{{range .Tasks}}<tr><th>{{.Name}}</th><td>{{.Priority}}</td></tr>
{{end}}</table>{{end}}

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  function set(id, text) {
    var el = document.getElementById(id);
    if (!el) return;
    el.textContent = text;
    el.className = text;
  }
  ws.onmessage = function(ev) {
    try {
      var s = JSON.parse(ev.data).status;
      set("mode", s.mode);
      set("alert", s.alert);
      document.getElementById("reading").textContent = s.last_reading;
      document.getElementById("samples-read").textContent = s.counts.samples_read;
      document.getElementById("samples-dropped").textContent = s.counts.samples_dropped;
    } catch (e) {}
  };
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
