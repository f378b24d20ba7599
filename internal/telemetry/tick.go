package telemetry

import "time"

// Tick computes the sample following prev for the given fan speed
func (m Model) Tick(prev Sample, speed int, now time.Time, r Rand) Sample {
	temp := prev.Temperature + (m.TargetTemperature(speed)-prev.Temperature)*m.Smoothing +
		jitter(r, m.TemperatureJitter)
	power := prev.Power + (m.TargetPower(speed)-prev.Power)*m.Smoothing +
		jitter(r, m.PowerJitter)

	return Sample{
		Time:        now,
		Temperature: settle(temp, m.Temperature),
		Speed:       speed,
		Power:       settle(power, m.Power),
	}
}

// Seed builds n samples spaced step apart and ending at now, scattered
// around the targets for speed. This is the history shown when a fan view
// opens.
func (m Model) Seed(n int, speed int, now time.Time, step time.Duration, r Rand) []Sample {
	if n <= 0 {
		return nil
	}

	samples := make([]Sample, 0, n)
	for i := n - 1; i >= 0; i-- {
		temp := m.TargetTemperature(speed) + jitter(r, m.SeedTemperature)
		power := m.TargetPower(speed) + jitter(r, m.SeedPower)

		samples = append(samples, Sample{
			Time:        now.Add(-time.Duration(i) * step),
			Temperature: settle(temp, m.Temperature),
			Speed:       speed,
			Power:       settle(power, m.Power),
		})
	}

	return samples
}
