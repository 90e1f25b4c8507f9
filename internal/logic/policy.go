package logic

// Band is the hysteresis half-width around the target temperature, in
// degrees C. Inside target±Band neither heater nor fan is driven.
const Band = 1.0

// Channel identifies one actuator relay.
type Channel int

const (
	ChannelFan Channel = iota
	ChannelHeater
	ChannelMotor
	NumChannels
)

func (c Channel) String() string {
	switch c {
	case ChannelFan:
		return "fan"
	case ChannelHeater:
		return "heater"
	case ChannelMotor:
		return "motor"
	default:
		return "unknown"
	}
}

// ActuatorIntent is the desired on/off value per channel for one cycle.
type ActuatorIntent struct {
	Fan    bool
	Heater bool
	Motor  bool
}

// Get returns the intent for a single channel.
func (a ActuatorIntent) Get(c Channel) bool {
	switch c {
	case ChannelFan:
		return a.Fan
	case ChannelHeater:
		return a.Heater
	case ChannelMotor:
		return a.Motor
	}
	return false
}

// Regulate computes the actuator intent from the current temperature, the
// configured target, and the machine state. Fan cooling is protective and
// applies regardless of run state; heater and motor are run-only.
func Regulate(tempC float64, targetC int, state MachineState) ActuatorIntent {
	t := float64(targetC)
	return ActuatorIntent{
		Fan:    tempC > t+Band,
		Heater: tempC < t-Band && state.Running(),
		Motor:  state.Running(),
	}
}
