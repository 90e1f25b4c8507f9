package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/centrifuge-ctl/internal/logic"
	"github.com/sweeney/centrifuge-ctl/internal/status"
)

// frameEnvelope is the wire format for WebSocket frames: {type, ts, data}.
type frameEnvelope struct {
	Type string      `json:"type"`
	Ts   string      `json:"ts"`
	Data interface{} `json:"data"`
}

// DisplayJSON is the `data` payload for "display" frames.
type DisplayJSON struct {
	State        string  `json:"state"`
	Enabled      bool    `json:"enabled"`
	TemperatureC float64 `json:"temperature_c"`
	TargetTempC  int     `json:"target_temperature_c"`
	TargetRPM    int     `json:"target_rpm"`
	DurationSec  int     `json:"run_duration_sec"`
	Remaining    string  `json:"remaining,omitempty"`
}

// DisplayFrame serializes a display intent into a WebSocket frame.
func DisplayFrame(intent logic.DisplayIntent, at time.Time) []byte {
	data, err := json.Marshal(frameEnvelope{
		Type: "display",
		Ts:   at.UTC().Format(time.RFC3339),
		Data: DisplayJSON{
			State:        intent.State.String(),
			Enabled:      intent.Enabled,
			TemperatureC: intent.TemperatureC,
			TargetTempC:  intent.TargetTempC,
			TargetRPM:    intent.TargetRPM,
			DurationSec:  intent.DurationSec,
			Remaining:    intent.Remaining,
		},
	})
	if err != nil {
		return nil
	}
	return data
}

// StatusFrame serializes a full status snapshot; sent as the first frame
// on connect.
func StatusFrame(snap status.Snapshot) []byte {
	var inner json.RawMessage = status.FormatJSON(snap)
	data, err := json.Marshal(frameEnvelope{
		Type: "status",
		Ts:   snap.Now.UTC().Format(time.RFC3339),
		Data: inner,
	})
	if err != nil {
		return nil
	}
	return data
}
