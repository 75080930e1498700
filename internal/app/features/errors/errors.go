// Package errors turns store and validation errors into JSON responses.
// Import it as httperrors.
package errors

import (
	"net/http"

	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"go.uber.org/zap"
)

// Status maps an error kind to its HTTP status.
func Status(k apperr.Kind) int {
	switch k {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Duplicate:
		return http.StatusConflict
	case apperr.Invalid:
		return http.StatusBadRequest
	case apperr.Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func code(k apperr.Kind) string {
	switch k {
	case apperr.NotFound:
		return "not_found"
	case apperr.Forbidden:
		return "forbidden"
	case apperr.Duplicate:
		return "conflict"
	case apperr.Invalid:
		return "invalid"
	case apperr.Transient:
		return "unavailable"
	default:
		return "internal"
	}
}

// Write logs err under op and writes the matching error response. Client
// errors carry their message; server errors get a generic one so driver
// details never reach the client.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, op string, err error) {
	k := apperr.KindOf(err)
	status := Status(k)
	msg := err.Error()

	switch k {
	case apperr.Internal:
		msg = "something went wrong"
		log.Error(op, zap.Error(err), zap.String("path", r.URL.Path))
	case apperr.Transient:
		msg = "the service is temporarily unavailable; try again"
		log.Warn(op, zap.Error(err), zap.String("path", r.URL.Path))
	default:
		log.Debug(op, zap.Error(err), zap.Int("status", status))
	}
	respond.Error(w, status, code(k), msg)
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusNotFound, "not_found", "no such endpoint")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}
