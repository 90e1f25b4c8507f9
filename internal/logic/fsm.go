package logic

// Event is an input to the navigation FSM. Back/Up/Down correspond to a
// rising edge on the matching button; TimerExpired is synthesized by the
// control cycle when the countdown is observed below zero during a run.
type Event int

const (
	EventNone Event = iota
	EventBack
	EventUp
	EventDown
	EventTimerExpired
)

func (e Event) String() string {
	switch e {
	case EventBack:
		return "BACK"
	case EventUp:
		return "UP"
	case EventDown:
		return "DOWN"
	case EventTimerExpired:
		return "TIMER_EXPIRED"
	default:
		return "NONE"
	}
}

// Transition applies one event to the navigation FSM. It returns the next
// state and whether the countdown must be reset to cfg.DurationSec (run
// start from Home, and run completion on TimerExpired). cfg is mutated in
// place for the Set* editing states, saturating silently at the field
// bounds. A corrupted input state is normalized to Home first, so the
// result is always one of the eight defined states.
//
// The FSM's side effects are limited to cfg mutation and the countdown
// reset request; it never touches actuators or the store.
func Transition(state MachineState, ev Event, cfg *RunConfig) (MachineState, bool) {
	state = Normalize(state)

	switch ev {
	case EventTimerExpired:
		if state.Running() {
			return StateHome, true
		}
		return state, false

	case EventBack:
		switch state {
		case StateTempTimeMenu:
			return StateHome, false
		case StateTimeRpmMenu:
			return StateTempTimeMenu, false
		case StateSetTime:
			return StateTimeRpmMenu, false
		case StateSetRpm:
			return StateTempTimeMenu, false
		case StateSetTemp:
			return StateTimeRpmMenu, false
		case StateRunTemp, StateRunRpm:
			return StateHome, false
		}
		return state, false

	case EventUp:
		switch state {
		case StateHome:
			return StateTempTimeMenu, false
		case StateTempTimeMenu:
			return StateTimeRpmMenu, false
		case StateTimeRpmMenu:
			return StateSetTime, false
		case StateSetTime:
			cfg.DurationSec = clamp(cfg.DurationSec+DurationStepSec, MinDurationSec, MaxDurationSec)
			return state, false
		case StateSetRpm:
			cfg.TargetRPM = clamp(cfg.TargetRPM+1, MinTargetRPM, MaxTargetRPM)
			return state, false
		case StateSetTemp:
			cfg.TargetTempC = clamp(cfg.TargetTempC+1, MinTargetTempC, MaxTargetTempC)
			return state, false
		case StateRunTemp:
			return StateRunRpm, false
		case StateRunRpm:
			return StateRunTemp, false
		}
		return state, false

	case EventDown:
		switch state {
		case StateHome:
			// Start a run: countdown reset, motor facet first.
			return StateRunRpm, true
		case StateTempTimeMenu:
			return StateSetTime, false
		case StateTimeRpmMenu:
			return StateSetRpm, false
		case StateSetTime:
			cfg.DurationSec = clamp(cfg.DurationSec-DurationStepSec, MinDurationSec, MaxDurationSec)
			return state, false
		case StateSetRpm:
			cfg.TargetRPM = clamp(cfg.TargetRPM-1, MinTargetRPM, MaxTargetRPM)
			return state, false
		case StateSetTemp:
			cfg.TargetTempC = clamp(cfg.TargetTempC-1, MinTargetTempC, MaxTargetTempC)
			return state, false
		case StateRunTemp:
			return StateRunRpm, false
		case StateRunRpm:
			return StateRunTemp, false
		}
		return state, false
	}

	return state, false
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
