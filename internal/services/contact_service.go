package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"farmdirect/internal/models"
	"farmdirect/internal/repositories"
)

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `validate:"required,max=255"`
	Email   string `validate:"omitempty,email"`
	Phone   string `validate:"omitempty,contact_phone"`
	Message string `validate:"required"`
}

// ContactService stores and lists contact form submissions.
type ContactService struct {
	repo     repositories.ContactRepository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewContactService(repo repositories.ContactRepository, validate *validator.Validate, logger *zap.Logger) *ContactService {
	return &ContactService{repo: repo, validate: validate, logger: logger}
}

// Submit validates and stores a message.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	if err := s.validate.Struct(in); err != nil {
		return nil, invalidInput(err)
	}

	msg := &models.ContactMessage{Name: in.Name, Message: in.Message}
	if in.Email != "" {
		msg.Email = &in.Email
	}
	if in.Phone != "" {
		msg.Phone = &in.Phone
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.logger.Info("contact message received", zap.Int("id", msg.ID))
	return msg, nil
}

// List returns all messages newest first.
func (s *ContactService) List(ctx context.Context) ([]models.ContactMessage, error) {
	return s.repo.List(ctx)
}
