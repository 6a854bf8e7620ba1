package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/skulookup/models"
)

// asLookupError returns the LookupError in err's chain, wrapping anything
// else as INTERNAL_ERROR.
func asLookupError(err error) *models.LookupError {
	var le *models.LookupError
	if errors.As(err, &le) {
		return le
	}
	return models.NewLookupError(models.ErrCodeInternal, err.Error(), err)
}

// respondError writes body with the status mapped from err's code.
func respondError(c *gin.Context, err error, body func(*models.ErrorDetail) any) {
	le := asLookupError(err)
	c.JSON(mapErrorToStatus(le), body(le.ToDetail()))
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.LookupError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeSKUNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeIndexUnavailable:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeIndexParse, models.ErrCodePageFetch, models.ErrCodeBrowserCrash:
		return http.StatusBadGateway // 502
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
