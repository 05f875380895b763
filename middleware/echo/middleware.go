package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/propschema/compiler"
	"github.com/reoring/propschema/middleware"
)

// ValidateJSON validates the request body against s, stores the record in
// the request context on success, or responds with the middleware.Check
// status and payload.
func ValidateJSON(s *compiler.Schema, opt middleware.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			record, status, payload := middleware.Check(s, c.Request().Body, opt)
			if status != http.StatusOK {
				return c.JSON(status, payload)
			}
			ctx := middleware.ContextWithRecord(c.Request().Context(), record)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetRecord fetches the validated record from echo.Context.
func GetRecord(c echo.Context) (map[string]any, bool) {
	return middleware.RecordFromContext(c.Request().Context())
}
