// Package gpio provides the button panel and relay bank with hardware
// abstraction. The real implementations use the Linux GPIO character
// device; the fakes allow testing without hardware.
package gpio

import "github.com/sweeney/centrifuge-ctl/internal/logic"

// ButtonReader samples the logical level of the four panel buttons.
type ButtonReader interface {
	// Read returns the current logical levels (pressed = true),
	// sampled once per control cycle.
	Read() (logic.Levels, error)

	// Close releases GPIO resources.
	Close() error
}

// RelayBank drives the three actuator relays. Set is idempotent; callers
// are expected to avoid redundant identical writes.
type RelayBank interface {
	Set(ch logic.Channel, on bool) error

	// Close releases GPIO resources, driving all relays off first.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinPower = 5
	DefaultPinBack  = 6
	DefaultPinUp    = 13
	DefaultPinDown  = 19

	DefaultPinFan    = 16
	DefaultPinHeater = 20
	DefaultPinMotor  = 21
)

// ButtonPins bundles the input pin assignments for the real driver.
type ButtonPins struct {
	Power, Back, Up, Down int
}

// RelayPins bundles the output pin assignments for the real driver.
type RelayPins struct {
	Fan, Heater, Motor int
}
