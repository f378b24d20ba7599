package config

import "codeberg.org/mutker/ventsim/internal/errors"

const (
	ErrInvalidConfig          = errors.ErrInvalidConfig
	ErrBindFlags              = errors.ErrBindFlags
	ErrReadConfig             = errors.ErrReadConfig
	ErrInvalidLogLevel        = errors.ErrInvalidLogLevel
	ErrInvalidInterval        = errors.ErrInvalidInterval
	ErrInvalidWindow          = errors.ErrInvalidWindow
	ErrInvalidSpeedLimits     = errors.ErrInvalidSpeedLimits
	ErrInvalidThresholdLimits = errors.ErrInvalidThresholdLimits
)
