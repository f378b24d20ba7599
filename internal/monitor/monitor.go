// Package monitor turns a stream of temperatures into threshold crossing
// events.
package monitor

import (
	"fmt"
	"math"
)

// Crossing is the outcome of observing one temperature
type Crossing int

const (
	None Crossing = iota
	// Exceeded means the temperature rose above the threshold
	Exceeded
	// Normal means the temperature fell back to or below the threshold
	Normal
)

func (c Crossing) String() string {
	switch c {
	case Exceeded:
		return "exceeded"
	case Normal:
		return "normal"
	default:
		return "none"
	}
}

// Monitor is an edge-triggered two-state machine. The zero value starts in
// the "not above" state.
type Monitor struct {
	above bool
}

// Observe compares temp with threshold and reports a crossing only on a
// state transition.
func (m *Monitor) Observe(temp, threshold float64) Crossing {
	switch {
	case !m.above && temp > threshold:
		m.above = true
		return Exceeded
	case m.above && temp <= threshold:
		m.above = false
		return Normal
	}

	return None
}

// Above reports the current state
func (m *Monitor) Above() bool {
	return m.above
}

// Reset returns the monitor to the "not above" state
func (m *Monitor) Reset() {
	m.above = false
}

// Message renders the log line for a crossing
func Message(c Crossing, temp, threshold float64) string {
	switch c {
	case Exceeded:
		return fmt.Sprintf("temperature threshold exceeded: %.1f°C > %.1f°C", temp, threshold)
	case Normal:
		return fmt.Sprintf("temperature returned to normal: %.1f°C", temp)
	default:
		return ""
	}
}

// Limits bound the configurable threshold
type Limits struct {
	Default float64 `mapstructure:"default" json:"default"`
	Min     float64 `mapstructure:"min" json:"min"`
	Max     float64 `mapstructure:"max" json:"max"`
	Step    float64 `mapstructure:"step" json:"step"`
}

func DefaultLimits() Limits {
	return Limits{Default: 25, Min: 20, Max: 30, Step: 0.5}
}

// Valid reports whether the limits are usable
func (l Limits) Valid() bool {
	return l.Min <= l.Max && l.Step >= 0 && l.Default >= l.Min && l.Default <= l.Max
}

// Clamp snaps v to the step grid anchored at Min and keeps it in range
func (l Limits) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return l.Default
	}

	v = max(l.Min, min(v, l.Max))
	if l.Step > 0 {
		v = l.Min + math.Round((v-l.Min)/l.Step)*l.Step
		v = max(l.Min, min(v, l.Max))
	}

	return v
}
