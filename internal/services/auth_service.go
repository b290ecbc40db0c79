package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
	"farmdirect/internal/repositories"
)

// AuthService handles account signup and login. Identity is the phone
// number; there are no tokens or sessions.
type AuthService struct {
	userRepo repositories.UserRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, validate *validator.Validate, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		validate: validate,
		logger:   logger,
	}
}

// Signup validates and stores a new account.
func (s *AuthService) Signup(ctx context.Context, name, phone, password string) (*models.User, error) {
	user := &models.User{
		Name:     strings.TrimSpace(name),
		Phone:    strings.TrimSpace(phone),
		Password: password,
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, invalidInput(err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", zap.String("phone", user.Phone))
	return user, nil
}

// Login checks the phone and password pair. Unknown phones and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, apperr.Validation("missing_fields", "Phone and password are required")
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if user.Password != password {
		return nil, invalidCredentials()
	}
	return user, nil
}

func invalidCredentials() error {
	return apperr.Unauthorized("invalid_credentials", "Invalid phone number or password")
}
