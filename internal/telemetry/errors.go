package telemetry

import "codeberg.org/mutker/ventsim/internal/errors"

const (
	ErrInvalidModel    = errors.ErrorCode("telemetry_invalid_model")
	ErrInvalidCapacity = errors.ErrorCode("telemetry_invalid_capacity")
)
