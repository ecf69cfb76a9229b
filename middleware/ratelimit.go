package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"editorial-cms/helper"
)

// RateLimit rejects requests once limiter is exhausted. A nil limiter
// lets everything through.
func RateLimit(limiter *rate.Limiter, h *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			h.SendTooManyRequests(c, "Too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
