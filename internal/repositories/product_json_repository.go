package repositories

import (
	"context"
	"slices"
	"sort"
	"sync"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
)

const productsFile = "products.json"

// JSONProductRepository keeps the catalog in products.json.
type JSONProductRepository struct {
	store    *fileStore
	products []models.Product
	mu       sync.RWMutex
}

func newJSONProductRepository(store *fileStore) (*JSONProductRepository, error) {
	var products []models.Product
	if err := store.read(productsFile, &products); err != nil {
		return nil, apperr.Persistence("load products", err)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return &JSONProductRepository{store: store, products: products}, nil
}

// GetAll returns all products ordered by ID.
func (r *JSONProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Persistence("list products", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// GetByID returns a product by its ID.
func (r *JSONProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Persistence("get product", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, productNotFound(id)
}

// Create adds a new product, assigning the next free ID when none is set.
func (r *JSONProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return apperr.Persistence("create product", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	maxID := 0
	for _, p := range r.products {
		if p.Name == product.Name && p.Unit == product.Unit {
			return productExists(product)
		}
		if product.ID != 0 && p.ID == product.ID {
			return apperr.Conflict("product_exists", "Product ID already in use")
		}
		maxID = max(maxID, p.ID)
	}

	stored := *product
	if stored.ID == 0 {
		stored.ID = maxID + 1
	}
	next := append(slices.Clone(r.products), stored)
	sort.Slice(next, func(i, j int) bool { return next[i].ID < next[j].ID })
	if err := r.store.write(productsFile, next); err != nil {
		return apperr.Persistence("create product", err)
	}
	r.products = next
	product.ID = stored.ID
	return nil
}
