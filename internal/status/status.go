// Package status provides a thread-safe status tracker for the
// centrifuge-ctl daemon. It is read by the HTTP handlers and the live
// WebSocket stream.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/centrifuge-ctl/internal/device"
	"github.com/sweeney/centrifuge-ctl/internal/logic"
)

// NetworkInfo contains network state published on the status page.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	SensorPort  string
	ConfigPath  string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         logic.MachineState
	Powered       bool
	TemperatureC  float64
	RemainingSec  int
	RunConfig     logic.RunConfig
	Actuators     logic.ActuatorIntent
	Counts        device.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the machine-facing fields. Called from the run loop on every
// cycle.
func (t *Tracker) Update(state logic.MachineState, powered bool, tempC float64, remainingSec int, runCfg logic.RunConfig, actuators logic.ActuatorIntent, counts device.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Powered = powered
	t.snap.TemperatureC = tempC
	t.snap.RemainingSec = remainingSec
	t.snap.RunConfig = runCfg
	t.snap.Actuators = actuators
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
