package repositories

import (
	"context"
	"fmt"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// GetAll returns the catalog ordered by ID.
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
}

func productNotFound(id int) error {
	return apperr.NotFound("product_not_found", fmt.Sprintf("Product %d not found", id))
}

func productExists(p *models.Product) error {
	return apperr.Conflict("product_exists", fmt.Sprintf("Product %s (%s) already exists", p.Name, p.Unit))
}
