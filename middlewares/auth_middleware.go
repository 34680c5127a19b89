package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-till/utils"
)

// Context keys set by the auth middlewares.
const (
	CtxUserID   = "user_id"
	CtxTenantID = "tenant_id"
	CtxRole     = "role"
)

// AuthMiddleware trusts the tenant in the identity token. Services still
// check that every entity they touch belongs to it.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("format token tidak valid"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		setPrincipal(c, claims)
		c.Next()
	}
}

// WebSocketAuthMiddleware reads the token from ?token= since browsers
// cannot set headers on a websocket upgrade.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		setPrincipal(c, claims)
		c.Next()
	}
}

func setPrincipal(c *gin.Context, claims *utils.CustomClaims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxTenantID, claims.TenantID)
	c.Set(CtxRole, claims.Role)
}

// TenantID returns the tenant put in the context by the auth middleware,
// or 0 when the request is unauthenticated.
func TenantID(c *gin.Context) uint {
	if v, ok := c.Get(CtxTenantID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
