package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/repositories/memory"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterWithGin(); err != nil {
		panic(err)
	}
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Error   *dto.ErrorDetail `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func serveError(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	HandleAPIError(c, err)
	return w
}

func TestHandleAPIError_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"validation", apperrors.NewMissingFieldError("courseId"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"not found", apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"conflict", apperrors.ErrLessonSlugTaken, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"forbidden", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"method", apperrors.ErrMethodNotAllowed, http.StatusMethodNotAllowed, dto.ErrorCodeMethodNotAllowed},
		{"rate", apperrors.ErrTooManyRequests, http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests},
		{"store", apperrors.NewStoreError("list courses", errors.New("socket closed")), http.StatusInternalServerError, dto.ErrorCodeDatabaseError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(tt.err)
			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestHandleAPIError_Messages(t *testing.T) {
	w := serveError(apperrors.NewMissingFieldError("slug"))
	env := decode(t, w)
	assert.Equal(t, "missing required field: slug", env.Message)
	assert.Equal(t, "slug", env.Error.Field)
	assert.Nil(t, env.Error.Details)

	// driver text never leaks
	w = serveError(apperrors.NewStoreError("list courses", errors.New("socket closed")))
	env = decode(t, w)
	assert.Equal(t, "internal error", env.Message)
	assert.NotContains(t, w.Body.String(), "socket")
}

func TestHandleAPIError_Details(t *testing.T) {
	ce := apperrors.NewStoreError("delete course tree", errors.New("x")).(*apperrors.CustomError)
	ce.WithDetails(map[string]interface{}{"report": map[string]int{"lessonsDeleted": 3}})

	env := decode(t, serveError(ce))
	details, ok := env.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "report")
}

func TestMethodNotAllowed(t *testing.T) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed())
	r.GET("/api/v1/courses", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/courses", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, dto.ErrorCodeMethodNotAllowed, decode(t, w).Error.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/api/v1/courses", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/courses", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestRateLimiter_Local(t *testing.T) {
	rl := NewRateLimiter(nil)
	r := gin.New()
	r.POST("/login", rl.Limit("login", 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestStoreFromContext(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	r := gin.New()
	r.Use(WithStore(repos))
	r.GET("/", func(c *gin.Context) {
		got, ok := StoreFromContext(c)
		if !ok || got != repos {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, got.Driver)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "memory", w.Body.String())
}

func newAuth(t *testing.T) (*AuthMiddleware, string) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", SessionExp: time.Hour, TokenIssuer: "test"})
	token, _, err := jwtService.GenerateSessionToken("admin")
	require.NoError(t, err)
	svc := services.NewAdminAuthService("admin", "", jwtService)
	return NewAuthMiddleware(svc, "session", "/admin/login"), token
}

func TestAdminAPI(t *testing.T) {
	m, token := newAuth(t)
	r := gin.New()
	r.GET("/admin/api/me", m.AdminAPI(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextUsername)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestAdminPage(t *testing.T) {
	m, token := newAuth(t)
	r := gin.New()
	r.GET("/admin/courses", m.AdminPage(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/courses?q=sql", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Fcourses%3Fq%3Dsql", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/admin/courses", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/admin/courses", SafeNext("/admin/courses", "/admin"))
	assert.Equal(t, "/admin", SafeNext("https://evil.example", "/admin"))
	assert.Equal(t, "/admin", SafeNext("//evil.example", "/admin"))
	assert.Equal(t, "/admin", SafeNext("", "/admin"))
}

type bindTarget struct {
	CourseID string `json:"courseId" binding:"required"`
}

func TestBindJSON(t *testing.T) {
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var body bindTarget
		if !BindJSON(c, &body) {
			return
		}
		c.String(http.StatusOK, body.CourseID)
	})

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"ok", `{"courseId":"sql"}`, http.StatusOK, ""},
		{"missing field", `{}`, http.StatusBadRequest, "courseId"},
		{"malformed", `{"courseId":`, http.StatusBadRequest, "body"},
		{"empty", ``, http.StatusBadRequest, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, w.Code)
			if tt.field != "" {
				assert.Equal(t, tt.field, decode(t, w).Error.Field)
			}
		})
	}
}
