package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

// internalErrorMessage is the only text a caller sees for store failures
const internalErrorMessage = "internal error"

// StatusFor maps an application error to its HTTP status and error code
func StatusFor(err error) (int, dto.ErrorCode) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden
	case errors.Is(err, apperrors.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, dto.ErrorCodeMethodNotAllowed
	case errors.Is(err, apperrors.ErrTooManyRequests):
		return http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return http.StatusInternalServerError, dto.ErrorCodeDatabaseError
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}

// HandleAPIError writes err as the standard error envelope
func HandleAPIError(c *gin.Context, err error) {
	status, code := StatusFor(err)

	message := apperrors.Message(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		message = internalErrorMessage
	}

	detail := dto.NewErrorDetail(code, message)
	if field := apperrors.Field(err); field != "" {
		detail = detail.WithField(field)
	}

	var ce *apperrors.CustomError
	if errors.As(err, &ce) && len(ce.Details) > 0 {
		extra := make(map[string]interface{}, len(ce.Details))
		for k, v := range ce.Details {
			if k != "field" {
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			detail = detail.WithDetails(extra)
		}
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// MethodNotAllowed answers 405 for known paths called with another method
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrMethodNotAllowed,
			"method "+c.Request.Method+" not allowed"))
	}
}

// NotFound answers unknown API paths with the standard envelope
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewResourceNotFoundError("route not found"))
	}
}

// Recovery turns panics into a 500 envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		HandleAPIError(c, errors.New("panic"))
	})
}
