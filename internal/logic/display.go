package logic

import "fmt"

// DisplayIntent is what the core asks a display driver to show for the
// current state. Rendering (character positions, fonts) is the driver's
// job; the core only names the state and the values relevant to it.
type DisplayIntent struct {
	State        MachineState
	Enabled      bool
	TemperatureC float64
	TargetTempC  int
	TargetRPM    int
	DurationSec  int
	Remaining    string // M:SS while running, empty otherwise
}

// Intent builds the display intent for one powered cycle.
func Intent(state MachineState, cfg RunConfig, tempC float64, remainingSec int) DisplayIntent {
	d := DisplayIntent{
		State:        state,
		Enabled:      true,
		TemperatureC: tempC,
		TargetTempC:  cfg.TargetTempC,
		TargetRPM:    cfg.TargetRPM,
		DurationSec:  cfg.DurationSec,
	}
	if state.Running() {
		d.Remaining = FormatRemaining(remainingSec)
	}
	return d
}

// FormatRemaining renders a countdown value as M:SS. Negative values clamp
// to 0:00 (the run completes on the cycle that observes the negative value).
func FormatRemaining(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
