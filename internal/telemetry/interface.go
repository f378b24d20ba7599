package telemetry

import "time"

// Rand is the jitter source used by the simulation. *math/rand.Rand
// satisfies it; tests inject fixed sequences.
type Rand interface {
	Float64() float64
}

// Sample is one simulated reading of a fan
type Sample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Speed       int       `json:"speed"`
	Power       float64   `json:"power"`
}

// Range is an inclusive clamp interval
type Range struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

// Clamp keeps v within the range
func (r Range) Clamp(v float64) float64 {
	return max(r.Min, min(v, r.Max))
}
