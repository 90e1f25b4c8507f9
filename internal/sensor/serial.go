package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// SerialReader reads ASCII temperature lines from a thermistor board over a
// serial port (one calibrated reading per line, e.g. "T=36.50") and caches
// the latest value so Read never blocks the control cycle.
type SerialReader struct {
	port serial.Port

	mu   sync.Mutex
	last float64
	ok   bool
	err  error
}

// NewSerialReader opens the port and starts the background read loop.
func NewSerialReader(portName string, baud int) (*SerialReader, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open sensor port %s: %w", portName, err)
	}

	r := &SerialReader{port: port}
	go r.readLoop()
	return r, nil
}

func (r *SerialReader) readLoop() {
	sc := bufio.NewScanner(r.port)
	for sc.Scan() {
		v, err := ParseReading(sc.Text())
		if err != nil {
			// Garbage line (partial read, line noise): keep the last
			// good value.
			continue
		}
		r.mu.Lock()
		r.last = v
		r.ok = true
		r.mu.Unlock()
	}
	if err := sc.Err(); err != nil {
		r.mu.Lock()
		r.err = fmt.Errorf("sensor read: %w", err)
		r.mu.Unlock()
	}
}

// Read returns the most recent temperature reading.
func (r *SerialReader) Read() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.last, r.err
	}
	if !r.ok {
		return 0, errors.New("sensor: no reading yet")
	}
	return r.last, nil
}

// Close closes the serial port, which also stops the read loop.
func (r *SerialReader) Close() error {
	return r.port.Close()
}

// ParseReading parses one sensor line: a decimal value with an optional
// "T=" prefix and surrounding whitespace.
func ParseReading(line string) (float64, error) {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "T=")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse reading %q: %w", line, err)
	}
	return v, nil
}
