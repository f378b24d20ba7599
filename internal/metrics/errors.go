package metrics

import "codeberg.org/mutker/ventsim/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig

	// Registration Errors
	ErrRegisterFailed = errors.ErrorCode("metrics_register_failed")
)
