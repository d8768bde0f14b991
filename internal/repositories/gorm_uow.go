package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GORMUnitOfWork runs callbacks inside a database transaction. The stores
// handed to the callback all wrap the same *gorm.DB transaction handle, so
// their writes commit or roll back together.
type GORMUnitOfWork struct {
	db *gorm.DB
}

// NewGORMUnitOfWork creates a new instance of GORMUnitOfWork.
func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{
		db: db,
	}
}

// Do begins a transaction, rebinds the repositories onto it and invokes fn.
// A non-nil error (or a panic) from fn rolls everything back.
func (u *GORMUnitOfWork) Do(ctx context.Context, fn func(tx Stores) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Products: NewGORMProductRepository(tx),
			Carts:    NewGORMCartRepository(tx),
			Orders:   NewGORMOrderRepository(tx),
		})
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}
