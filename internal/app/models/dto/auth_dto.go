package dto

import "time"

// LoginRequest represents admin console credentials
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// SessionResponse represents a signed admin session
type SessionResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType" example:"Bearer"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username" example:"admin"`
}

// ContactRequest is the public contact form
type ContactRequest struct {
	Name    string `json:"name" form:"name" binding:"required,max=120"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Topic   string `json:"topic" form:"topic" binding:"omitempty,max=120"`
	Message string `json:"message" form:"message" binding:"required,max=5000"`
}
