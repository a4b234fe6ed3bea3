package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mehrab10/loopgram/backend/internal/apperror"
	"github.com/mehrab10/loopgram/backend/internal/models"
)

// getUserIDFromContext extracts the authenticated user id set by the JWT
// middleware. Returns 0 when the request is unauthenticated.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// toHTTPError maps the application error taxonomy onto HTTP statuses.
// Storage and persistence failures surface a generic reason; raw driver
// errors never reach the client.
func toHTTPError(err error) *echo.HTTPError {
	var appErr *apperror.AppError
	msg := err.Error()
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msg)
	case errors.Is(err, apperror.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msg)
	case errors.Is(err, apperror.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	case errors.Is(err, apperror.ErrTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, msg)
	case errors.Is(err, apperror.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, msg)
	case errors.Is(err, apperror.ErrStorage):
		return echo.NewHTTPError(http.StatusBadGateway, msg)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msg)
	}
}
