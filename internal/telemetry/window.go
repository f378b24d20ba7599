package telemetry

import "codeberg.org/mutker/ventsim/internal/errors"

// DefaultCapacity is the number of samples a fan view keeps
const DefaultCapacity = 30

// Window is a fixed-capacity FIFO of samples backed by a ring buffer.
// It is not safe for concurrent use.
type Window struct {
	buf   []Sample
	start int
	size  int
}

func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, errors.New().WithData(ErrInvalidCapacity, capacity)
	}

	return &Window{buf: make([]Sample, capacity)}, nil
}

// Push appends s, evicting the oldest sample when the window is full.
// It reports whether a sample was evicted.
func (w *Window) Push(s Sample) bool {
	c := len(w.buf)
	if w.size < c {
		w.buf[(w.start+w.size)%c] = s
		w.size++
		return false
	}

	w.buf[w.start] = s
	w.start = (w.start + 1) % c

	return true
}

// Fill pushes every sample in order
func (w *Window) Fill(samples []Sample) {
	for _, s := range samples {
		w.Push(s)
	}
}

func (w *Window) Len() int { return w.size }

func (w *Window) Cap() int { return len(w.buf) }

// Last returns the newest sample
func (w *Window) Last() (Sample, bool) {
	if w.size == 0 {
		return Sample{}, false
	}

	return w.buf[(w.start+w.size-1)%len(w.buf)], true
}

// Samples returns a copy, oldest first
func (w *Window) Samples() []Sample {
	out := make([]Sample, w.size)
	for i := range out {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}

	return out
}
