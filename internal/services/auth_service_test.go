package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
	"farmdirect/internal/services"
	"farmdirect/internal/validation"
)

func TestAuthService_Signup(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, validation.New(), zaptest.NewLogger(t))

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Phone == "9876543210" && u.Name == "Asha" && u.Password == "secret1"
	})).Return(nil).Once()

	user, err := service.Signup(context.Background(), " Asha ", "9876543210", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_SignupRejectsInput(t *testing.T) {
	tests := []struct {
		name, fullName, phone, password string
		code                            string
	}{
		{"missing name", "", "9876543210", "secret1", "missing_fields"},
		{"missing phone", "Asha", "", "secret1", "missing_fields"},
		{"bad phone", "Asha", "1234567890", "secret1", "invalid_phone"},
		{"short password", "Asha", "9876543210", "abc", "invalid_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			service := services.NewAuthService(mockRepo, validation.New(), zaptest.NewLogger(t))

			_, err := service.Signup(context.Background(), tt.fullName, tt.phone, tt.password)

			assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", err)
			assert.Equal(t, tt.code, apperr.CodeOf(err))
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_SignupDuplicate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, validation.New(), zaptest.NewLogger(t))
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(apperr.Conflict("user_exists", "User already exists")).Once()

	_, err := service.Signup(context.Background(), "Asha", "9876543210", "secret1")

	assert.True(t, apperr.Is(err, apperr.KindConflict))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, validation.New(), zaptest.NewLogger(t))
	stored := &models.User{Phone: "9876543210", Name: "Asha", Password: "secret1"}

	mockRepo.On("GetByPhone", mock.Anything, "9876543210").Return(stored, nil)
	mockRepo.On("GetByPhone", mock.Anything, "9000000000").Return(nil, apperr.NotFound("user_not_found", "User not found"))

	user, err := service.Login(context.Background(), "9876543210", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)

	_, err = service.Login(context.Background(), "9876543210", "wrong")
	assert.Equal(t, "invalid_credentials", apperr.CodeOf(err))

	_, err = service.Login(context.Background(), "9000000000", "secret1")
	assert.Equal(t, "invalid_credentials", apperr.CodeOf(err))
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = service.Login(context.Background(), "", "")
	assert.Equal(t, "missing_fields", apperr.CodeOf(err))
}
