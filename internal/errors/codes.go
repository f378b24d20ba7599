package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrNotImplemented  ErrorCode = "not_implemented"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig          ErrorCode = "invalid_configuration"
	ErrBindFlags              ErrorCode = "bind_flags_failed"
	ErrReadConfig             ErrorCode = "read_config_failed"
	ErrInvalidInterval        ErrorCode = "invalid_interval"
	ErrInvalidWindow          ErrorCode = "invalid_window"
	ErrInvalidSpeedLimits     ErrorCode = "invalid_speed_limits"
	ErrInvalidThresholdLimits ErrorCode = "invalid_threshold_limits"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Resource errors
	ErrResourceNotFound ErrorCode = "resource_not_found"

	// Application errors
	ErrInitApp ErrorCode = "init_app_failed"
	ErrServe   ErrorCode = "serve_failed"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:               "Internal error occurred",
	ErrInvalidArgument:        "Invalid argument provided",
	ErrNotImplemented:         "Operation not implemented",
	ErrUnavailable:            "Service unavailable",
	ErrAlreadyRunning:         "Another instance is already running",
	ErrInvalidConfig:          "Invalid configuration",
	ErrBindFlags:              "Failed to bind flags",
	ErrReadConfig:             "Failed to read config file",
	ErrInvalidInterval:        "Invalid interval value",
	ErrInvalidWindow:          "Invalid sample window size",
	ErrInvalidSpeedLimits:     "Invalid fan speed limits",
	ErrInvalidThresholdLimits: "Invalid temperature threshold limits",
	ErrInvalidLogLevel:        "Invalid log level",
	ErrInitFailed:             "Initialization failed",
	ErrShutdownFailed:         "Shutdown failed",
	ErrResourceNotFound:       "Resource not found",
	ErrInitApp:                "Failed to initialize application",
	ErrServe:                  "HTTP server failed",
	ErrOperationFailed:        "Operation failed",
	ErrTimeout:                "Operation timed out",
	ErrInvalidOperation:       "Invalid operation",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
