package sink

import "codeberg.org/mutker/ventsim/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrExportFailed  = errors.ErrorCode("sink_export_failed")
	ErrPublishFailed = errors.ErrorCode("sink_publish_failed")
	ErrEncodeFailed  = errors.ErrorCode("sink_encode_failed")
	ErrQueueFull     = errors.ErrorCode("sink_queue_full")
	ErrClosed        = errors.ErrorCode("sink_closed")
)
