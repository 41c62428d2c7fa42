package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// AuthController issues admin session tokens over JSON
type AuthController struct {
	authService services.AdminAuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AdminAuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Login handles admin login
// @Summary Admin login
// @Description Exchanges the admin credentials for a bearer session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Session issued"
// @Failure 400 {object} dto.APIResponse "Missing field"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 429 {object} dto.APIResponse "Too many attempts"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.authService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.SessionResponse{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
		Username:  session.Username,
	}, "Logged in")
}
