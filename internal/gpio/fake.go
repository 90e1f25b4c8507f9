package gpio

import (
	"errors"
	"sync"

	"github.com/sweeney/centrifuge-ctl/internal/logic"
)

// FakeButtons is a test double that returns scripted button levels.
type FakeButtons struct {
	// Samples contains scripted levels to return. Each call to Read()
	// consumes the next sample; when exhausted the last sample repeats.
	Samples []logic.Levels

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeButtons creates a FakeButtons with the given samples.
func NewFakeButtons(samples []logic.Levels) *FakeButtons {
	return &FakeButtons{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeButtons) Read() (logic.Levels, error) {
	if f.ReadError != nil {
		return logic.Levels{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return logic.Levels{}, errors.New("no samples configured")
	}

	i := f.index
	if i >= len(f.Samples) {
		i = len(f.Samples) - 1
	} else {
		f.index++
	}

	return f.Samples[i], nil
}

// Push appends samples to the script. Useful for tests that drive the
// controller incrementally instead of scripting everything up front.
func (f *FakeButtons) Push(samples ...logic.Levels) {
	f.Samples = append(f.Samples, samples...)
}

// Close marks the reader as closed.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds to the beginning of the samples.
func (f *FakeButtons) Reset() {
	f.index = 0
	f.Closed = false
}

// RelayWrite records one call to Set.
type RelayWrite struct {
	Channel logic.Channel
	On      bool
}

// FakeRelays records every relay write for test assertions.
type FakeRelays struct {
	mu sync.Mutex

	// Writes contains every Set call in order.
	Writes []RelayWrite

	// state holds the current value per channel.
	state [logic.NumChannels]bool

	// SetError, if set, will be returned by Set()
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeRelays creates a FakeRelays with all channels off.
func NewFakeRelays() *FakeRelays {
	return &FakeRelays{}
}

// Set records the write and updates the channel state.
func (f *FakeRelays) Set(ch logic.Channel, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, RelayWrite{Channel: ch, On: on})
	f.state[ch] = on
	return nil
}

// Get returns the current value of a channel.
func (f *FakeRelays) Get(ch logic.Channel) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state[ch]
}

// WriteCount returns how many Set calls were recorded.
func (f *FakeRelays) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Writes)
}

// WritesFor returns the sequence of values written to one channel.
func (f *FakeRelays) WritesFor(ch logic.Channel) []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	var vals []bool
	for _, w := range f.Writes {
		if w.Channel == ch {
			vals = append(vals, w.On)
		}
	}
	return vals
}

// Close drives all channels off and marks the bank closed.
func (f *FakeRelays) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.state {
		f.state[ch] = false
	}
	f.Closed = true
	return nil
}

// Reset clears recorded writes and state.
func (f *FakeRelays) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes = nil
	f.state = [logic.NumChannels]bool{}
	f.Closed = false
	f.SetError = nil
}
