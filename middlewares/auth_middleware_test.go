package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/utils"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", middlewares.AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant_id": middlewares.TenantID(c)})
	})
	r.GET("/till", middlewares.AuthMiddleware(), middlewares.RequireRole(middlewares.RoleCashier), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "Bearer abc").Code)

	tok, err := utils.GenerateToken(9, 4, middlewares.RoleStaff)
	require.NoError(t, err)
	w := get(r, "/whoami", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tenant_id":4}`, w.Body.String())
}

func TestTokenWithoutTenantIsRejected(t *testing.T) {
	r := newRouter()
	tok, err := utils.GenerateToken(9, 0, middlewares.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "Bearer "+tok).Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter()
	for role, want := range map[string]int{
		middlewares.RoleCashier: http.StatusNoContent,
		middlewares.RoleAdmin:   http.StatusNoContent,
		middlewares.RoleChef:    http.StatusForbidden,
		middlewares.RoleStaff:   http.StatusForbidden,
	} {
		tok, err := utils.GenerateToken(1, 1, role)
		require.NoError(t, err)
		assert.Equal(t, want, get(r, "/till", "Bearer "+tok).Code, role)
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.NewRateLimiter(0.001, 2).RateLimit())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/ping", "").Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = get(r, "/ping", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
