package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"TalentRadar/internal/domain"
)

// APIError is the error body every endpoint returns.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// MapError resolves a use case error to a status and code.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict, "run_in_progress"
	case errors.Is(err, domain.ErrConfigurationMissing):
		return http.StatusInternalServerError, "configuration_missing"
	case errors.Is(err, domain.ErrNoStructuredOutput):
		return http.StatusBadGateway, "no_structured_output"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondError(c *gin.Context, err error) {
	status, code := MapError(err)
	body := APIError{Message: err.Error(), Code: code}
	var soe *domain.StructuredOutputError
	if errors.As(err, &soe) {
		body.Excerpt = soe.Excerpt
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: msg, Code: "invalid_input"}})
}
