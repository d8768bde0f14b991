package repositories

import "context"

// Stores bundles the repositories participating in one atomic unit. Inside a
// UnitOfWork callback they are all bound to the same transaction.
type Stores struct {
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository
}

// UnitOfWork runs a function against transaction-scoped stores. If fn returns
// an error every write made through the passed Stores is rolled back;
// otherwise they all commit together. Checkout relies on this to keep the
// order insert and the cart clear atomic.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Stores) error) error
}
