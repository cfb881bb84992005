package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/config"
)

// SecurityHeadersMiddleware adds security-related HTTP headers to all
// responses: clickjacking, MIME sniffing and referrer protections, plus HSTS
// in production.
func SecurityHeadersMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS only in production to avoid breaking plain-HTTP local setups.
		if cfg.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
