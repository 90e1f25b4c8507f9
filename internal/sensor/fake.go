package sensor

import "sync"

// FakeReader is a settable Reader for tests.
type FakeReader struct {
	mu     sync.Mutex
	temp   float64
	err    error
	reads  int
	Closed bool
}

// NewFakeReader creates a FakeReader returning the given temperature.
func NewFakeReader(temp float64) *FakeReader {
	return &FakeReader{temp: temp}
}

// Set changes the temperature returned by subsequent Reads.
func (f *FakeReader) Set(temp float64) {
	f.mu.Lock()
	f.temp = temp
	f.mu.Unlock()
}

// SetError makes subsequent Reads fail with err (nil clears it).
func (f *FakeReader) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Read returns the configured temperature or error.
func (f *FakeReader) Read() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return 0, f.err
	}
	return f.temp, nil
}

// Reads returns how many times Read was called.
func (f *FakeReader) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
