package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{db: db}
}

func (r *GORMContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return apperr.Persistence("save contact message", err)
	}
	return nil
}

func (r *GORMContactRepository) List(ctx context.Context) ([]models.ContactMessage, error) {
	var msgs []models.ContactMessage
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&msgs).Error; err != nil {
		return nil, apperr.Persistence("list contact messages", err)
	}
	return msgs, nil
}
