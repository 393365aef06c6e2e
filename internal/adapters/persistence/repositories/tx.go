package repositories

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTxManager implements TxManager on top of gorm's Transaction.
// The transaction handle travels in the context so that repositories created
// outside the transaction still participate in it.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new transaction manager
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// Transaction runs fn inside a single database transaction. A non-nil error
// from fn rolls everything back.
func (m *GormTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction handle carried by ctx, or the repository's
// own handle when no transaction is in progress.
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
