package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID makes sure every request carries an X-Request-ID, minting one when
// the client did not send its own. The ID is echoed on the response and stored
// in the gin context for handlers and error logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("request_id", rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

// Logger writes one line per request: method, path, status, latency, and the
// request ID for correlation.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		rid, _ := c.Get("request_id")
		log.Printf("%s %s %d %s rid=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			rid,
		)
	}
}

// Recovery turns panics into 500 responses instead of dropping the connection.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
