package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactor runs functions inside a single database transaction. The
// transaction handle travels in the context so every repository call made
// within fn joins the same transaction.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a GormTransactor.
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// InTx executes fn atomically; any error rolls the transaction back.
func (t *GormTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the context's transaction handle when present, or the
// repository's own connection otherwise.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
