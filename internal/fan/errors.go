package fan

import "codeberg.org/mutker/ventsim/internal/errors"

const (
	ErrFanOff        = errors.ErrorCode("fan_off")
	ErrInvalidLimits = errors.ErrorCode("fan_invalid_limits")
	ErrInvalidID     = errors.ErrorCode("fan_invalid_id")
)
