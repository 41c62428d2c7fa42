package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/academy/internal/app/models/dto"
)

const validatedBodyKey = "validatedBody"

// BindJSON decodes and validates the request body into obj. On failure it
// writes a 400 envelope and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var detail *dto.ErrorDetail
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		detail = dto.HandleValidationError(err)
	case errors.Is(err, io.EOF):
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "request body is required").WithField("body")
	default:
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "invalid request body").
			WithField("body").
			WithDetails(err.Error())
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
	return false
}

// ValidateRequest binds the body into a fresh value from newObj and stores
// it under "validatedBody" for the handler
func ValidateRequest(newObj func() interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := newObj()
		if !BindJSON(c, obj) {
			return
		}
		c.Set(validatedBodyKey, obj)
		c.Next()
	}
}

// ValidatedBody returns the value stored by ValidateRequest
func ValidatedBody[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(validatedBodyKey)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*T)
	return obj, ok
}
