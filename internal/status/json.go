package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/centrifuge-ctl/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	State         string        `json:"state"`
	Powered       bool          `json:"powered"`
	TemperatureC  float64       `json:"temperature_c"`
	Remaining     string        `json:"remaining"`
	RemainingSec  int           `json:"remaining_sec"`
	Profile       ProfileJSON   `json:"profile"`
	Actuators     ActuatorsJSON `json:"actuators"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"event_counts"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// ProfileJSON is the JSON representation of the run profile.
type ProfileJSON struct {
	TargetTempC int `json:"target_temperature_c"`
	TargetRPM   int `json:"target_rpm"`
	DurationSec int `json:"run_duration_sec"`
}

// ActuatorsJSON is the JSON representation of the applied relay states.
type ActuatorsJSON struct {
	Fan    bool `json:"fan"`
	Heater bool `json:"heater"`
	Motor  bool `json:"motor"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	RunsStarted   int `json:"runs_started"`
	RunsCompleted int `json:"runs_completed"`
	RunsAborted   int `json:"runs_aborted"`
	PowerCycles   int `json:"power_cycles"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	SensorPort  string `json:"sensor_port"`
	ConfigPath  string `json:"config_path"`
}

func buildInner(snap Snapshot) StatusInner {
	remaining := snap.RemainingSec

	return StatusInner{
		State:        snap.State.String(),
		Powered:      snap.Powered,
		TemperatureC: snap.TemperatureC,
		Remaining:    logic.FormatRemaining(remaining),
		RemainingSec: remaining,
		Profile: ProfileJSON{
			TargetTempC: snap.RunConfig.TargetTempC,
			TargetRPM:   snap.RunConfig.TargetRPM,
			DurationSec: snap.RunConfig.DurationSec,
		},
		Actuators: ActuatorsJSON{
			Fan:    snap.Actuators.Fan,
			Heater: snap.Actuators.Heater,
			Motor:  snap.Actuators.Motor,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			RunsStarted:   snap.Counts.RunsStarted,
			RunsCompleted: snap.Counts.RunsCompleted,
			RunsAborted:   snap.Counts.RunsAborted,
			PowerCycles:   snap.Counts.PowerCycles,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			SensorPort:  snap.Config.SensorPort,
			ConfigPath:  snap.Config.ConfigPath,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
