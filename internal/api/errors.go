package api

import (
	"errors"
	"net/http"

	"school-portal-gateway/internal/forms"
	"school-portal-gateway/internal/logger"
	apperrors "school-portal-gateway/pkg/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var vErr apperrors.ValidationError
	var apiErr *apperrors.APIError
	var partial *apperrors.PartialFailureError

	switch {
	case errors.As(err, &partial):
		return http.StatusMultiStatus
	case errors.As(err, &vErr),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidFileFormat):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, apperrors.ErrUnknownRole):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrFormInFlight):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrTransport):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusBadRequest {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError aborts the request with a single {"error": ...} notification.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	log := logger.Component("api")
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	} else {
		log.Debug().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("Request rejected")
	}

	body := gin.H{"error": forms.NoticeFor(err)}
	var vErr apperrors.ValidationError
	if errors.As(err, &vErr) {
		body["field"] = vErr.Field
	}
	if status == http.StatusInternalServerError {
		body["error"] = "Internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}
