package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"farmdirect/internal/models"
	"farmdirect/internal/services"
)

// AuthHandler handles HTTP requests for signup and login.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/signup", h.HandleSignup)
	router.Post("/login", h.HandleLogin)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type userResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{Name: u.Name, Phone: u.Phone}
}

// HandleSignup handles new account registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	user, err := h.authService.Signup(c.UserContext(), req.Name, req.Phone, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created successfully!",
		"user":    toUserResponse(user),
	})
}

// HandleLogin checks a phone and password pair.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	user, err := h.authService.Login(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful!",
		"user":    toUserResponse(user),
	})
}
