package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/propschema/compiler"
	"github.com/reoring/propschema/middleware"
)

// ValidateJSON validates the request body against s, stores the record in
// the request context on success, and aborts with the middleware.Check
// status and payload otherwise.
func ValidateJSON(s *compiler.Schema, opt middleware.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, status, payload := middleware.Check(s, c.Request.Body, opt)
		if status != http.StatusOK {
			c.AbortWithStatusJSON(status, payload)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithRecord(c.Request.Context(), record))
		c.Next()
	}
}

// GetRecord fetches the validated record from gin.Context.
func GetRecord(c *gin.Context) (map[string]any, bool) {
	return middleware.RecordFromContext(c.Request.Context())
}
