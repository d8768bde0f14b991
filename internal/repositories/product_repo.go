package repositories

import (
	"yourstyle/internal/models"
)

// ProductRepository is the catalog store as seen by the cart and checkout
// flows: read access plus Create, which only the startup seeder uses.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Count() (int64, error)
}
