package repositories

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
)

const contactsFile = "contacts.json"

// JSONContactRepository keeps contact form submissions in contacts.json.
type JSONContactRepository struct {
	store    *fileStore
	messages []models.ContactMessage
	mu       sync.RWMutex
}

func newJSONContactRepository(store *fileStore) (*JSONContactRepository, error) {
	var msgs []models.ContactMessage
	if err := store.read(contactsFile, &msgs); err != nil {
		return nil, apperr.Persistence("load contact messages", err)
	}
	return &JSONContactRepository{store: store, messages: msgs}, nil
}

func (r *JSONContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return apperr.Persistence("save contact message", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *msg
	stored.ID = len(r.messages) + 1
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	next := append(slices.Clone(r.messages), stored)
	if err := r.store.write(contactsFile, next); err != nil {
		return apperr.Persistence("save contact message", err)
	}
	r.messages = next
	*msg = stored
	return nil
}

func (r *JSONContactRepository) List(ctx context.Context) ([]models.ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Persistence("list contact messages", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.messages)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if out == nil {
		out = []models.ContactMessage{}
	}
	return out, nil
}
