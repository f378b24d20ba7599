package api

import (
	"net/http"

	"codeberg.org/mutker/ventsim/internal/camera"
	"codeberg.org/mutker/ventsim/internal/dashboard"
	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/fan"
	"codeberg.org/mutker/ventsim/internal/history"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"codeberg.org/mutker/ventsim/internal/site"
)

const (
	ErrBadRequest = errors.ErrorCode("api_bad_request")
	ErrServe      = errors.ErrServe
)

// statusCodes maps error codes to HTTP statuses, checked in order along the
// error chain
var statusCodes = []struct {
	code   errors.ErrorCode
	status int
}{
	{simulator.ErrUnknownFan, http.StatusNotFound},
	{site.ErrUnknownSite, http.StatusNotFound},
	{dashboard.ErrUnknownCamera, http.StatusNotFound},
	{history.ErrDisabled, http.StatusNotFound},
	{fan.ErrFanOff, http.StatusConflict},
	{dashboard.ErrNotOnSite, http.StatusConflict},
	{dashboard.ErrNoCameraOpen, http.StatusConflict},
	{simulator.ErrViewNotOpen, http.StatusConflict},
	{ErrBadRequest, http.StatusBadRequest},
	{camera.ErrUnknownChannel, http.StatusBadRequest},
	{simulator.ErrClosed, http.StatusServiceUnavailable},
}

func statusOf(err error) int {
	for _, sc := range statusCodes {
		if errors.HasCode(err, sc.code) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}
