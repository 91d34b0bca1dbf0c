package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// With returns a Context bound to ctx and no transaction.
func With(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// Conn picks the transaction when one is open, otherwise fallback, scoped to Ctx.
func (c Context) Conn(fallback *gorm.DB) *gorm.DB {
	transaction := c.Tx
	if transaction == nil {
		transaction = fallback
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return transaction.WithContext(ctx)
}

// InTx runs fn inside a transaction, reusing the open one if present.
func (c Context) InTx(db *gorm.DB, fn func(inner Context) error) error {
	if c.Tx != nil {
		return fn(c)
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Context{Ctx: ctx, Tx: tx})
	})
}
