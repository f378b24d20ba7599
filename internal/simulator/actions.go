package simulator

import (
	"fmt"

	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/fan"
)

// Toggle switches a fan on or off
func (e *Engine) Toggle(fanID string) (FanStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.fanLocked(fanID)
	if err != nil {
		return FanStatus{}, err
	}

	on := f.Toggle()
	e.restartLocked(fanID)

	msg := "fan switched off"
	if on {
		msg = "fan switched on"
	}
	e.events.Append(fanID, eventlog.KindAction, msg)
	e.log.Info().Str("fan", fanID).Bool("on", on).Msg("Fan toggled")

	return e.statusLocked(fanID), nil
}

// SetSpeed changes the speed of a running fan. The value is clamped to the
// speed limits; an unchanged speed is not logged.
func (e *Engine) SetSpeed(fanID string, speed int) (FanStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.fanLocked(fanID)
	if err != nil {
		return FanStatus{}, err
	}

	prev, applied, err := f.SetSpeed(fan.Speed(speed))
	if err != nil {
		return FanStatus{}, err
	}

	if prev != applied {
		e.restartLocked(fanID)
		e.events.Append(fanID, eventlog.KindAction, fmt.Sprintf("speed changed: %d → %d rpm", prev, applied))
		e.log.Info().Str("fan", fanID).Int("from", int(prev)).Int("to", int(applied)).Msg("Fan speed changed")
	}

	return e.statusLocked(fanID), nil
}

// SetThreshold stores a clamped threshold for the fan and re-checks the
// latest sample of its open view against it
func (e *Engine) SetThreshold(fanID string, threshold float64) (FanStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.fanLocked(fanID); err != nil {
		return FanStatus{}, err
	}

	applied := e.cfg.Threshold.Clamp(threshold)
	e.thresholds[fanID] = applied
	e.log.Debug().Str("fan", fanID).Float64("threshold", applied).Msg("Threshold changed")

	if v, ok := e.views[fanID]; ok {
		if last, ok := v.window.Last(); ok {
			e.logCrossingLocked(fanID, v.monitor.Observe(last.Temperature, applied), last.Temperature, applied)
		}
	}

	return e.statusLocked(fanID), nil
}
