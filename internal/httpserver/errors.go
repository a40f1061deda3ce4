package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/transport"
)

var kinds = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrPaymentDeclined, http.StatusPaymentRequired},
	{service.ErrNotInvolved, http.StatusForbidden},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrInvalidTransition, http.StatusConflict},
	{service.ErrConflict, http.StatusConflict},
}

func statusOf(err error) (int, string) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, k.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal"
}

// fail logs err under op and returns the matching HTTP error.
func fail(l *slog.Logger, op string, err error) error {
	status, kind := statusOf(err)
	if status >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", status, "reason", "internal", "error", err)
		return echo.NewHTTPError(status, transport.ErrorResponse{Error: kind, Message: "Une erreur est survenue. Veuillez réessayer."})
	}
	l.Warn(op+"_error", "status", status, "reason", kind, "error", err)
	return echo.NewHTTPError(status, transport.ErrorResponse{Error: kind, Message: service.Message(err)})
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Error: "validation", Message: reason})
}
