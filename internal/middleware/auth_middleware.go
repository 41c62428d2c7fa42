package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
)

// Context keys set by AdminAuth
const (
	ContextUsername = "username"
	ContextRole     = "role"
)

// AuthMiddleware guards the admin console
type AuthMiddleware struct {
	authService services.AdminAuthService
	cookieName  string
	loginPath   string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authService services.AdminAuthService, cookieName, loginPath string) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		cookieName:  cookieName,
		loginPath:   loginPath,
	}
}

// token reads the session cookie, falling back to a bearer header
func (m *AuthMiddleware) token(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); header != "" {
		if token, err := auth.ExtractBearerToken(header); err == nil {
			return token
		}
	}
	return ""
}

// authenticate validates the session and stores its claims on the context
func (m *AuthMiddleware) authenticate(c *gin.Context) error {
	token := m.token(c)
	if token == "" {
		return apperrors.ErrTokenInvalid
	}
	claims, err := m.authService.Validate(token)
	if err != nil {
		return err
	}
	if claims.Role != auth.RoleAdmin {
		return apperrors.ErrPermissionDenied
	}
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextRole, claims.Role)
	return nil
}

// AdminPage redirects anonymous browsers to the login page
func (m *AuthMiddleware) AdminPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.authenticate(c); err != nil {
			target := m.loginPath
			if c.Request.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			}
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminAPI answers anonymous calls with a 401 envelope
func (m *AuthMiddleware) AdminAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.authenticate(c); err != nil {
			HandleAPIError(c, err)
			return
		}
		c.Next()
	}
}

// SafeNext keeps post-login redirects on this site
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	return next
}
