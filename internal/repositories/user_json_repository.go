package repositories

import (
	"context"
	"maps"
	"sync"
	"time"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
)

const usersFile = "users.json"

// JSONUserRepository keeps accounts in users.json, keyed by phone.
type JSONUserRepository struct {
	store *fileStore
	users map[string]models.User
	mu    sync.RWMutex
}

func newJSONUserRepository(store *fileStore) (*JSONUserRepository, error) {
	users := make(map[string]models.User)
	if err := store.read(usersFile, &users); err != nil {
		return nil, apperr.Persistence("load users", err)
	}
	return &JSONUserRepository{store: store, users: users}, nil
}

// Create adds a new user.
func (r *JSONUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return apperr.Persistence("create user", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Phone]; ok {
		return userExists()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	next := maps.Clone(r.users)
	next[user.Phone] = *user
	if err := r.store.write(usersFile, next); err != nil {
		return apperr.Persistence("create user", err)
	}
	r.users = next
	return nil
}

// GetByPhone returns a user by phone number.
func (r *JSONUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Persistence("get user", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[phone]
	if !ok {
		return nil, userNotFound()
	}
	return &user, nil
}
