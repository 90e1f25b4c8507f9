//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/centrifuge-ctl/internal/logic"
)

// RealButtons reads the panel buttons from GPIO lines on actual hardware.
type RealButtons struct {
	chip  *gpiocdev.Chip
	lines [4]*gpiocdev.Line // power, back, up, down
}

// NewRealButtons requests the four button lines as inputs with pull-down,
// matching Pi boot defaults and the panel's active-high wiring.
func NewRealButtons(pins ButtonPins) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealButtons{chip: chip}
	for i, pin := range []int{pins.Power, pins.Back, pins.Up, pins.Down} {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request button pin %d: %w", pin, err)
		}
		b.lines[i] = line
	}
	return b, nil
}

// Read returns the current logical levels. The buttons are wired
// active-high: raw 1 = pressed.
func (b *RealButtons) Read() (logic.Levels, error) {
	var raw [4]int
	for i, line := range b.lines {
		v, err := line.Value()
		if err != nil {
			return logic.Levels{}, fmt.Errorf("read button line %d: %w", i, err)
		}
		raw[i] = v
	}
	return logic.Levels{
		Power: raw[0] == 1,
		Back:  raw[1] == 1,
		Up:    raw[2] == 1,
		Down:  raw[3] == 1,
	}, nil
}

// Close releases the button lines. Pins are reconfigured to input with
// pull-down before closing so external wiring sees Pi boot defaults.
func (b *RealButtons) Close() error {
	var errs []error
	for i, line := range b.lines {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button line %d: %w", i, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button line %d: %w", i, err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealRelays drives the actuator relays through GPIO output lines.
type RealRelays struct {
	chip  *gpiocdev.Chip
	lines [logic.NumChannels]*gpiocdev.Line
}

// NewRealRelays requests the three relay lines as outputs, initially off.
func NewRealRelays(pins RelayPins) (*RealRelays, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealRelays{chip: chip}
	for ch, pin := range map[logic.Channel]int{
		logic.ChannelFan:    pins.Fan,
		logic.ChannelHeater: pins.Heater,
		logic.ChannelMotor:  pins.Motor,
	} {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s relay pin %d: %w", ch, pin, err)
		}
		r.lines[ch] = line
	}
	return r, nil
}

// Set drives one relay. The relays are active-high.
func (r *RealRelays) Set(ch logic.Channel, on bool) error {
	if ch < 0 || ch >= logic.NumChannels || r.lines[ch] == nil {
		return fmt.Errorf("set relay: unknown channel %d", ch)
	}
	v := 0
	if on {
		v = 1
	}
	if err := r.lines[ch].SetValue(v); err != nil {
		return fmt.Errorf("set %s relay: %w", ch, err)
	}
	return nil
}

// Close drives all relays off, then releases the lines. A heater left
// energized after process exit is a hazard, so the off-writes come first.
func (r *RealRelays) Close() error {
	var errs []error
	for ch := logic.Channel(0); ch < logic.NumChannels; ch++ {
		line := r.lines[ch]
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s relay: %w", ch, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s relay: %w", ch, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
