package simulator

import (
	"context"
	"time"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/monitor"
	"codeberg.org/mutker/ventsim/internal/telemetry"
)

// OpenView seeds a fresh sample window for the fan and starts its tick
// loop. Opening an already open view replaces it.
func (e *Engine) OpenView(fanID string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return View{}, errors.New().New(ErrClosed)
	}

	f, err := e.fanLocked(fanID)
	if err != nil {
		return View{}, err
	}

	window, err := telemetry.NewWindow(e.cfg.Capacity)
	if err != nil {
		return View{}, err
	}

	if old, ok := e.views[fanID]; ok {
		old.cancel()
	}

	speed := int(f.State().Speed)
	window.Fill(e.cfg.Model.Seed(e.cfg.Capacity, speed, e.now(), e.cfg.Interval, e.rnd))

	v := &view{window: window}
	e.views[fanID] = v
	e.startLocked(fanID, v)

	e.log.Debug().Str("fan", fanID).Int("speed", speed).Msg("View opened")

	// the seeded history is checked right away, like every later tick
	last, _ := window.Last()
	threshold := e.thresholds[fanID]
	e.logCrossingLocked(fanID, v.monitor.Observe(last.Temperature, threshold), last.Temperature, threshold)

	return e.viewLocked(fanID), nil
}

// CloseView stops the fan's tick loop and discards its samples
func (e *Engine) CloseView(fanID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.fanLocked(fanID); err != nil {
		return err
	}

	v, ok := e.views[fanID]
	if !ok {
		return nil
	}
	v.cancel()
	delete(e.views, fanID)

	e.log.Debug().Str("fan", fanID).Msg("View closed")

	return nil
}

// View returns the detail modal content of a fan. Samples are empty
// unless the view is open.
func (e *Engine) View(fanID string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.fanLocked(fanID); err != nil {
		return View{}, err
	}

	return e.viewLocked(fanID), nil
}

func (e *Engine) viewLocked(fanID string) View {
	out := View{
		Fan:       e.fans[fanID].State(),
		Threshold: e.thresholds[fanID],
		Logs:      e.events.ForFan(fanID, e.cfg.ViewLogLimit),
	}
	if v, ok := e.views[fanID]; ok {
		out.Open = true
		out.Samples = v.window.Samples()
		if last, ok := v.window.Last(); ok {
			out.Current = last.Temperature
			out.Above = last.Temperature > out.Threshold
		}
	}

	return out
}

// Step advances the fan's open view by one tick
func (e *Engine) Step(fanID string) (telemetry.Sample, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.fanLocked(fanID); err != nil {
		return telemetry.Sample{}, err
	}
	v, ok := e.views[fanID]
	if !ok {
		return telemetry.Sample{}, errors.New().WithData(ErrViewNotOpen, fanID)
	}

	return e.stepLocked(fanID, v), nil
}

// step appends one sample if gen still owns the view
func (e *Engine) step(fanID string, gen uint64) (telemetry.Sample, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.views[fanID]
	if !ok || v.gen != gen {
		return telemetry.Sample{}, errors.New().WithData(ErrStaleView, fanID)
	}

	return e.stepLocked(fanID, v), nil
}

// stepLocked ticks v and emits the reading and any crossing before the
// lock is released, so observers see them in the order they happened
func (e *Engine) stepLocked(fanID string, v *view) telemetry.Sample {
	f := e.fans[fanID]
	prev, _ := v.window.Last()
	sample := e.cfg.Model.Tick(prev, int(f.State().Speed), e.now(), e.rnd)
	v.window.Push(sample)
	f.Advance(e.cfg.Interval.Seconds())

	for _, fn := range e.observers {
		fn(Reading{Site: e.sites[fanID], FanID: fanID, Sample: sample})
	}

	threshold := e.thresholds[fanID]
	e.logCrossingLocked(fanID, v.monitor.Observe(sample.Temperature, threshold), sample.Temperature, threshold)

	return sample
}

// startLocked gives v a new generation and launches its loop
func (e *Engine) startLocked(fanID string, v *view) {
	e.nextGen++
	v.gen = e.nextGen

	ctx, cancel := context.WithCancel(e.ctx)
	v.cancel = cancel

	e.wg.Add(1)
	go e.run(ctx, fanID, v.gen)
}

// restartLocked rearms an open view's loop after its fan changed. The
// samples and monitor state are kept.
func (e *Engine) restartLocked(fanID string) {
	v, ok := e.views[fanID]
	if !ok {
		return
	}
	v.cancel()
	e.startLocked(fanID, v)
}

func (e *Engine) run(ctx context.Context, fanID string, gen uint64) {
	defer e.wg.Done()

	t := time.NewTicker(e.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := e.step(fanID, gen); err != nil {
				if errors.HasCode(err, ErrStaleView) {
					return
				}
				e.log.Warn().Err(err).Str("fan", fanID).Msg("Tick failed")
			}
		}
	}
}

// logCrossingLocked appends the crossing to the event log; callers hold
// e.mu so entries follow the order of the monitor's transitions
func (e *Engine) logCrossingLocked(fanID string, c monitor.Crossing, temp, threshold float64) {
	switch c {
	case monitor.Exceeded:
		e.events.Append(fanID, eventlog.KindThresholdExceeded, monitor.Message(c, temp, threshold))
		e.log.Info().Str("fan", fanID).Float64("temperature", temp).Float64("threshold", threshold).
			Msg("Temperature threshold exceeded")
	case monitor.Normal:
		e.events.Append(fanID, eventlog.KindThresholdNormal, monitor.Message(c, temp, threshold))
		e.log.Info().Str("fan", fanID).Float64("temperature", temp).Msg("Temperature back to normal")
	}
}
