package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func token(t *testing.T, method jwt.SigningMethod, key interface{}, rol string, exp time.Time) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID: "u1",
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func adminRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/admin", middleware.JWTAuth(secret), middleware.RequireRole(middleware.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": middleware.GetClaims(c).UserID})
	})
	return r
}

func call(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := adminRouter()
	future := time.Now().Add(time.Hour)

	w := call(r, "Bearer "+token(t, jwt.SigningMethodHS256, []byte(secret), "admin", future))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u1"`)

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized,
		call(r, "Bearer "+token(t, jwt.SigningMethodHS256, []byte("otro"), "admin", future)).Code)
	expired := call(r, "Bearer "+token(t, jwt.SigningMethodHS256, []byte(secret), "admin", time.Now().Add(-time.Hour)))
	assert.Equal(t, http.StatusUnauthorized, expired.Code)
	assert.Contains(t, expired.Body.String(), `"code":"token_expired"`)
	assert.Equal(t, http.StatusOK,
		call(r, "bearer "+token(t, jwt.SigningMethodHS256, []byte(secret), "admin", time.Now().Add(-10*time.Second))).Code,
		"scheme is case-insensitive and small skew is tolerated")
	assert.Equal(t, http.StatusUnauthorized,
		call(r, "Bearer "+token(t, jwt.SigningMethodHS512, []byte(secret), "admin", future)).Code, "only HS256")
	assert.Equal(t, http.StatusForbidden,
		call(r, "Bearer "+token(t, jwt.SigningMethodHS256, []byte(secret), "cliente", future)).Code)
}

func TestJWTAuth_NoSecretConfigured(t *testing.T) {
	r := gin.New()
	r.GET("/x", middleware.JWTAuth(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Body.String(), 36)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimiter(2, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
