package sensors

import (
	"errors"
	"time"
)

// FakeReader is a test double returning scripted samples, one per Read
// call — grounded on the teacher's gpio.FakeReader scripted-sample
// pattern, applied here to environmental/GPS samples instead of GPIO
// levels.
type FakeReader struct {
	Samples []Sample

	index int

	Closed bool

	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample; once exhausted, the last
// sample repeats.
func (f *FakeReader) Read(now time.Time) (Sample, error) {
	if f.ReadError != nil {
		return Sample{}, f.ReadError
	}
	if len(f.Samples) == 0 {
		return Sample{}, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the reader to the first sample.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
