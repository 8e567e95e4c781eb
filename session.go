package sqlargon

import (
	"context"

	"gorm.io/gorm"
)

type sessionKey struct{}

// WithSession returns a context carrying tx as the current session.
// Database and Repository operations route through the bound session
// until the context is discarded.
func WithSession(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, sessionKey{}, tx)
}

// CurrentSession returns the session bound to ctx, if any.
func CurrentSession(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(sessionKey{}).(*gorm.DB)
	return tx, ok
}
