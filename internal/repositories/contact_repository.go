package repositories

import (
	"context"

	"farmdirect/internal/models"
)

// ContactRepository stores contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	// List returns all submissions newest first.
	List(ctx context.Context) ([]models.ContactMessage, error)
}
