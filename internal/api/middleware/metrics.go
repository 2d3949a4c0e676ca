package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records finished requests
type HTTPObserver interface {
	ObserveHTTP(method, route, status string)
}

// Metrics reports each request by its route template
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
