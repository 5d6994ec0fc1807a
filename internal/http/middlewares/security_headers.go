package middlewares

import (
	"github.com/gin-gonic/gin"
)

// pages load only their own script and stylesheet
const pageCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; form-action 'self'"

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "same-origin")
		c.Header("X-XSS-Protection", "0")
		c.Header("Content-Security-Policy", pageCSP)
		c.Next()
	}
}
