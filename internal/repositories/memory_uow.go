package repositories

import (
	"context"
	"sync"
)

// InMemoryUnitOfWork serializes units of work under one mutex instead of a
// database transaction. It cannot undo writes on failure, so callbacks must
// order their writes so that an early exit leaves a consistent state (the
// checkout workflow inserts the order before clearing the cart, and the
// in-memory writes themselves cannot fail). Suitable for the memory backend
// and tests, not for a store shared between processes.
type InMemoryUnitOfWork struct {
	stores Stores
	mu     sync.Mutex
}

// NewInMemoryUnitOfWork creates a new instance of InMemoryUnitOfWork.
func NewInMemoryUnitOfWork(stores Stores) *InMemoryUnitOfWork {
	return &InMemoryUnitOfWork{
		stores: stores,
	}
}

// Do runs fn against the shared stores while holding the mutex.
func (u *InMemoryUnitOfWork) Do(ctx context.Context, fn func(tx Stores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(u.stores)
}
