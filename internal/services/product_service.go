package services

import (
	"context"

	"go.uber.org/zap"

	"farmdirect/internal/models"
	"farmdirect/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// SeedProducts stores products when the catalog is empty and reports how
// many were added.
func (s *ProductService) SeedProducts(ctx context.Context, products []models.Product) (int, error) {
	existing, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i := range products {
		if err := s.repo.Create(ctx, &products[i]); err != nil {
			return i, err
		}
		s.logger.Debug("seeded product", zap.String("name", products[i].Name), zap.Int("id", products[i].ID))
	}
	return len(products), nil
}
