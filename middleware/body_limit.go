package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const payloadTooLarge = "Payload too large. Please reduce image size or upload fewer images."

// BodyLimit rejects requests whose body exceeds limit bytes with 413.
// A declared Content-Length is checked up front; otherwise the body is capped
// and a handler reading past the cap fails its decode.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": payloadTooLarge})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
