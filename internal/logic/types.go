// Package logic contains the pure control core: the machine state set, the
// navigation FSM, the temperature regulation policy, button edge detection,
// and display intent. This package has NO external dependencies (no GPIO,
// MQTT, OS, or time.Sleep); everything is computed from explicit inputs.
package logic

// MachineState identifies the current screen/phase of the controller.
type MachineState int

const (
	StateHome MachineState = iota + 1
	StateTempTimeMenu
	StateTimeRpmMenu
	StateSetTime
	StateSetRpm
	StateSetTemp
	StateRunTemp
	StateRunRpm
)

func (s MachineState) String() string {
	switch s {
	case StateHome:
		return "HOME"
	case StateTempTimeMenu:
		return "TEMP_TIME_MENU"
	case StateTimeRpmMenu:
		return "TIME_RPM_MENU"
	case StateSetTime:
		return "SET_TIME"
	case StateSetRpm:
		return "SET_RPM"
	case StateSetTemp:
		return "SET_TEMP"
	case StateRunTemp:
		return "RUN_TEMP"
	case StateRunRpm:
		return "RUN_RPM"
	default:
		return "INVALID"
	}
}

// Valid reports whether s is one of the eight defined states.
func (s MachineState) Valid() bool {
	return s >= StateHome && s <= StateRunRpm
}

// Running reports whether s is one of the two facets of an active run.
func (s MachineState) Running() bool {
	return s == StateRunTemp || s == StateRunRpm
}

// Normalize maps a corrupted state value back to Home. Valid states pass
// through unchanged.
func Normalize(s MachineState) MachineState {
	if s.Valid() {
		return s
	}
	return StateHome
}

// RunConfig field bounds. Edits saturate at the bound; a persisted record
// with any field outside its range is rejected wholesale.
const (
	MinTargetTempC = 26
	MaxTargetTempC = 50

	MinTargetRPM = 1
	MaxTargetRPM = 30

	MinDurationSec  = 0
	MaxDurationSec  = 600
	DurationStepSec = 30
)

// RunConfig is the operator-editable run profile. It is owned by the device
// controller and mutated only through FSM transitions in the Set* states.
type RunConfig struct {
	TargetTempC int
	TargetRPM   int
	DurationSec int
}

// DefaultConfig returns the factory defaults used when the persisted record
// is missing or invalid.
func DefaultConfig() RunConfig {
	return RunConfig{TargetTempC: 38, TargetRPM: 15, DurationSec: 300}
}

// Valid reports whether all three fields are within their bounds.
func (c RunConfig) Valid() bool {
	return c.TargetTempC >= MinTargetTempC && c.TargetTempC <= MaxTargetTempC &&
		c.TargetRPM >= MinTargetRPM && c.TargetRPM <= MaxTargetRPM &&
		c.DurationSec >= MinDurationSec && c.DurationSec <= MaxDurationSec
}
