package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"pension-ledger/internal/adapter/middleware"
	"pension-ledger/internal/domain/actor"
	"pension-ledger/pkg/pensionerr"
)

// StatusFor maps a failure category to an HTTP status.
func StatusFor(kind pensionerr.Kind) int {
	switch kind.Category() {
	case pensionerr.CategoryAuthorization:
		return http.StatusForbidden
	case pensionerr.CategoryValidation:
		return http.StatusUnprocessableEntity
	case pensionerr.CategoryNotFound:
		return http.StatusNotFound
	case pensionerr.CategoryInternal:
		return http.StatusInternalServerError
	}
	return http.StatusConflict
}

func respondError(c echo.Context, err error) error {
	kind := pensionerr.KindOf(err)
	body := ErrorResponse{Error: string(kind)}
	var pe *pensionerr.Error
	if kind != pensionerr.Internal && errors.As(err, &pe) {
		body.Message = pe.Message
	}
	return c.JSON(StatusFor(kind), body)
}

// bindAndValidate decodes the body into req; on failure it has already written
// the response and returns false.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   string(pensionerr.MissingRequiredField),
			Message: "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// authed hands the caller resolved by middleware.Auth to fn.
func authed(fn func(c echo.Context, caller actor.Caller) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller, ok := middleware.CallerFrom(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		}
		return fn(c, caller)
	}
}
