// Package ginargon integrates database sessions with gin handlers, the
// way a request-scoped session dependency works in web frameworks.
package ginargon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/performancemedia/sqlargon"
)

// Middleware binds a transactional session to each request context. The
// session commits when the handler chain finishes without gin errors and
// rolls back otherwise.
func Middleware(db *sqlargon.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.Session(c.Request.Context(), func(ctx context.Context, _ *gorm.DB) error {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			if len(c.Errors) > 0 {
				return c.Errors.Last()
			}
			return nil
		})
		if err != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "transaction failed"})
		}
	}
}

// Transactional wraps each request in a unit of work, committing on
// success responses and rolling back on gin errors or 4xx/5xx statuses.
func Transactional(db *sqlargon.Database, opts ...sqlargon.UoWOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, u, err := db.Begin(c.Request.Context(), opts...)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to begin transaction"})
			return
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		var handlerErr error
		if len(c.Errors) > 0 {
			handlerErr = c.Errors.Last()
		} else if status := c.Writer.Status(); status >= http.StatusBadRequest {
			handlerErr = fmt.Errorf("request failed with status %d", status)
		}

		if cerr := u.Close(handlerErr); cerr != nil && handlerErr == nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to commit transaction"})
		}
	}
}
