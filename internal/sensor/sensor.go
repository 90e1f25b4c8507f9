// Package sensor reads the calibrated chamber temperature. The real
// implementation listens to a thermistor board on a serial port; the fake
// allows testing without hardware.
package sensor

// Reader yields the current temperature on demand. Read must not block:
// implementations cache the latest value so the control cycle never waits
// on hardware.
type Reader interface {
	// Read returns the temperature in degrees C.
	Read() (float64, error)

	// Close releases the underlying device.
	Close() error
}

// DefaultPort is the usual device path for the sensor board on a Pi.
const DefaultPort = "/dev/ttyACM0"

// DefaultBaud matches the board's firmware.
const DefaultBaud = 9600
