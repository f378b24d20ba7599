package telemetry

import (
	"math"

	"codeberg.org/mutker/ventsim/internal/errors"
)

// Model holds the coefficients of the fan telemetry simulation.
//
// Target temperature falls as speed rises:
//
//	target = BaseTemperature + (ReferenceSpeed - speed) / SpeedPerDegree
//
// Target power rises with speed:
//
//	target = BasePower + speed / ReferenceSpeed * PowerSpan
//
// Every tick moves the previous value by Smoothing towards the target, adds
// uniform jitter of the given amplitude and clamps to the range.
type Model struct {
	BaseTemperature   float64 `mapstructure:"base_temperature"`
	ReferenceSpeed    float64 `mapstructure:"reference_speed"`
	SpeedPerDegree    float64 `mapstructure:"speed_per_degree"`
	BasePower         float64 `mapstructure:"base_power"`
	PowerSpan         float64 `mapstructure:"power_span"`
	Smoothing         float64 `mapstructure:"smoothing"`
	TemperatureJitter float64 `mapstructure:"temperature_jitter"`
	PowerJitter       float64 `mapstructure:"power_jitter"`
	SeedTemperature   float64 `mapstructure:"seed_temperature_jitter"`
	SeedPower         float64 `mapstructure:"seed_power_jitter"`
	Temperature       Range   `mapstructure:"temperature"`
	Power             Range   `mapstructure:"power"`
}

func DefaultModel() Model {
	return Model{
		BaseTemperature:   22,
		ReferenceSpeed:    3000,
		SpeedPerDegree:    200,
		BasePower:         40,
		PowerSpan:         60,
		Smoothing:         0.1,
		TemperatureJitter: 0.3,
		PowerJitter:       2,
		SeedTemperature:   1,
		SeedPower:         5,
		Temperature:       Range{Min: 18, Max: 35},
		Power:             Range{Min: 30, Max: 120},
	}
}

func (m Model) Validate() error {
	errFactory := errors.New()

	switch {
	case m.ReferenceSpeed <= 0:
		return errFactory.WithData(ErrInvalidModel, "reference_speed must be positive")
	case m.SpeedPerDegree <= 0:
		return errFactory.WithData(ErrInvalidModel, "speed_per_degree must be positive")
	case m.Smoothing <= 0 || m.Smoothing > 1:
		return errFactory.WithData(ErrInvalidModel, "smoothing must be in (0, 1]")
	case m.TemperatureJitter < 0 || m.PowerJitter < 0 || m.SeedTemperature < 0 || m.SeedPower < 0:
		return errFactory.WithData(ErrInvalidModel, "jitter must not be negative")
	case m.Temperature.Min > m.Temperature.Max:
		return errFactory.WithData(ErrInvalidModel, "temperature range is empty")
	case m.Power.Min > m.Power.Max:
		return errFactory.WithData(ErrInvalidModel, "power range is empty")
	}

	return nil
}

// TargetTemperature is the temperature the room settles at for speed
func (m Model) TargetTemperature(speed int) float64 {
	return m.BaseTemperature + (m.ReferenceSpeed-float64(speed))/m.SpeedPerDegree
}

// TargetPower is the power draw the fan settles at for speed
func (m Model) TargetPower(speed int) float64 {
	return m.BasePower + float64(speed)/m.ReferenceSpeed*m.PowerSpan
}

// jitter maps r in [0, 1) to [-amplitude/2, amplitude/2)
func jitter(r Rand, amplitude float64) float64 {
	return (r.Float64() - 0.5) * amplitude
}

// round1 rounds to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// settle rounds and then clamps, so rounding can never leave the range
func settle(v float64, r Range) float64 {
	return r.Clamp(round1(v))
}
