package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn inside one database transaction. fn's error rolls the
// transaction back and is returned unchanged.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &gormTransactor{db: db} }

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	// nil db: unit test mode, fn runs without a transaction
	if t.db == nil {
		return fn(nil)
	}
	return t.db.WithContext(ctx).Transaction(fn)
}

// conn prefers the caller's transaction over the pool.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
