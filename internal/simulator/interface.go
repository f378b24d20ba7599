package simulator

import (
	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/fan"
	"codeberg.org/mutker/ventsim/internal/telemetry"
)

// Reading is one simulated sample together with where it came from
type Reading struct {
	Site   string           `json:"site"`
	FanID  string           `json:"fan_id"`
	Sample telemetry.Sample `json:"sample"`
}

// ReadingObserver receives every reading after the engine lock is released
type ReadingObserver func(Reading)

// FanStatus is a fan as listed on a floor plan
type FanStatus struct {
	fan.State
	Site      string  `json:"site"`
	Threshold float64 `json:"threshold"`
	ViewOpen  bool    `json:"view_open"`
}

// View is the content of a fan detail modal
type View struct {
	Fan       fan.State          `json:"fan"`
	Threshold float64            `json:"threshold"`
	Open      bool               `json:"open"`
	Samples   []telemetry.Sample `json:"samples"`
	Current   float64            `json:"current_temperature"`
	Above     bool               `json:"above_threshold"`
	Logs      []eventlog.Entry   `json:"logs"`
}
