package simulator

import "codeberg.org/mutker/ventsim/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("simulator_invalid_config")
	ErrUnknownFan    = errors.ErrorCode("simulator_unknown_fan")
	ErrViewNotOpen   = errors.ErrorCode("simulator_view_not_open")
	ErrStaleView     = errors.ErrorCode("simulator_stale_view")
	ErrClosed        = errors.ErrorCode("simulator_closed")
)
