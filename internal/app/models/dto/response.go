package dto

// APIResponse is the envelope of every JSON endpoint
type APIResponse struct {
	Success bool         `json:"success" example:"true"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message,omitempty" example:"Course created"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// NewErrorResponse wraps an error detail; its message is repeated at the top level
func NewErrorResponse(detail *ErrorDetail) APIResponse {
	return APIResponse{
		Success: false,
		Message: detail.Message,
		Error:   detail,
	}
}
