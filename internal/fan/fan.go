package fan

import (
	"math"
	"sync"

	"codeberg.org/mutker/ventsim/internal/errors"
)

const (
	fullTurn = 360.0
	// rotor degrees per second for each rpm
	degreesPerRPM = 0.01
)

type fanController struct {
	id     string
	on     bool
	speed  Speed
	limits SpeedLimits
	angle  float64
	mu     sync.RWMutex
}

// New creates a simulated fan. The initial speed is clamped to the limits.
func New(id string, on bool, speed Speed, limits SpeedLimits) (Controller, error) {
	errFactory := errors.New()

	if id == "" {
		return nil, errFactory.New(ErrInvalidID)
	}
	if !limits.Valid() {
		return nil, errFactory.WithData(ErrInvalidLimits, limits)
	}

	return &fanController{
		id:     id,
		on:     on,
		speed:  limits.Clamp(speed),
		limits: limits,
	}, nil
}

func (fc *fanController) ID() string {
	return fc.id
}

func (fc *fanController) State() State {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	return State{
		ID:    fc.id,
		On:    fc.on,
		Speed: fc.speed,
		Angle: fc.angle,
	}
}

func (fc *fanController) Limits() SpeedLimits {
	return fc.limits
}

func (fc *fanController) Toggle() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.on = !fc.on
	if !fc.on {
		fc.angle = 0
	}

	return fc.on
}

func (fc *fanController) SetSpeed(speed Speed) (Speed, Speed, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	prev := fc.speed
	if !fc.on {
		return prev, prev, errors.New().WithData(ErrFanOff, fc.id)
	}

	fc.speed = fc.limits.Clamp(speed)

	return prev, fc.speed, nil
}

func (fc *fanController) Advance(dt float64) float64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if !fc.on {
		fc.angle = 0
		return 0
	}

	fc.angle = math.Mod(fc.angle+float64(fc.speed)*degreesPerRPM*dt, fullTurn)

	return fc.angle
}
