package repositories

import (
	"context"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create stores a new account. An existing phone yields a conflict.
	Create(ctx context.Context, user *models.User) error
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
}

func userNotFound() error {
	return apperr.NotFound("user_not_found", "User not found")
}

func userExists() error {
	return apperr.Conflict("user_exists", "User already exists")
}
