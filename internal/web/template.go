package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/centrifuge-ctl/internal/status"
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
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
	"tempC": func(v float64) string {
		return fmt.Sprintf("%.1f°C", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Centrifuge Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
</style>
</head>
<body>
<h1>Centrifuge Controller<span id="live" class="live-dot err" title="live stream"></span></h1>

<table>
<tr><th>Power</th><td id="powered" class="{{if .Powered}}on{{else}}off{{end}}">{{onOff .Powered}}</td></tr>
<tr><th>State</th><td id="state">{{.State}}</td></tr>
<tr><th>Temperature</th><td id="temp">{{tempC .TemperatureC}}</td></tr>
<tr><th>Remaining</th><td id="remaining">{{.RemainingSec}}s</td></tr>
</table>

<h2>Run profile</h2>
<table>
<tr><th>Target temperature</th><td id="target-temp">{{.RunConfig.TargetTempC}}°C</td></tr>
<tr><th>Target RPM</th><td id="target-rpm">{{.RunConfig.TargetRPM}}</td></tr>
<tr><th>Run duration</th><td id="duration">{{.RunConfig.DurationSec}}s</td></tr>
</table>

<h2>Actuators</h2>
<table>
<tr><th>Fan</th><td class="{{if .Actuators.Fan}}on{{else}}off{{end}}">{{onOff .Actuators.Fan}}</td></tr>
<tr><th>Heater</th><td class="{{if .Actuators.Heater}}on{{else}}off{{end}}">{{onOff .Actuators.Heater}}</td></tr>
<tr><th>Motor</th><td class="{{if .Actuators.Motor}}on{{else}}off{{end}}">{{onOff .Actuators.Motor}}</td></tr>
</table>

<h2>Daemon</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
<tr><th>Runs started</th><td>{{.Counts.RunsStarted}}</td></tr>
<tr><th>Runs completed</th><td>{{.Counts.RunsCompleted}}</td></tr>
<tr><th>Runs aborted</th><td>{{.Counts.RunsAborted}}</td></tr>
<tr><th>Power cycles</th><td>{{.Counts.PowerCycles}}</td></tr>
</table>

{{if .Network}}
<h2>Network</h2>
<table>
<tr><th>Type</th><td>{{.Network.Type}}</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>
<tr><th>Status</th><td>{{.Network.Status}}</td></tr>
{{if .Network.SSID}}<tr><th>SSID</th><td>{{.Network.SSID}}</td></tr>{{end}}
</table>
{{end}}

<p><a href="/index.json">JSON</a></p>

<script>
(function() {
  var live = document.getElementById("live");
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { live.className = "live-dot ok"; };
    ws.onclose = function() { live.className = "live-dot err"; setTimeout(connect, 2000); };
    ws.onmessage = function(ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type !== "display") return;
      var d = msg.data;
      document.getElementById("state").textContent = d.state;
      document.getElementById("powered").textContent = d.enabled ? "ON" : "OFF";
      document.getElementById("powered").className = d.enabled ? "on" : "off";
      document.getElementById("temp").textContent = d.temperature_c.toFixed(1) + "°C";
      document.getElementById("remaining").textContent = d.remaining || "-";
      document.getElementById("target-temp").textContent = d.target_temperature_c + "°C";
      document.getElementById("target-rpm").textContent = d.target_rpm;
      document.getElementById("duration").textContent = d.run_duration_sec + "s";
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	_ = indexTmpl.Execute(w, snap)
}
