package api

import (
	"errors"
	"net/http"

	"ims-storefront-bridge/internal/domain"
)

// statusFor maps the error taxonomy to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuthSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionMismatch):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidShopDomain),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrTokenExchangeFailed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConfigNotFound),
		errors.Is(err, domain.ErrShopNotInstalled):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps internal details out of responses for server errors
func publicMessage(status int, err error) string {
	if status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
