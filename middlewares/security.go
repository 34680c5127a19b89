package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// apiCSP fits a server that only answers JSON and PDF receipts.
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders sets the browser hardening headers. Anything under /api
// carries tenant money data (orders, till, ledger, receipts), so those
// responses must never land in a shared or browser cache. /health stays
// cacheable for load balancers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", apiCSP)

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Cache-Control", "no-store, private")
			c.Header("Pragma", "no-cache")
		}
		// behind a TLS-terminating proxy the request itself is plain http
		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
