package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"farmdirect/internal/services"
)

// ContactHandler handles the contact form.
type ContactHandler struct {
	service *services.ContactService
	logger  *zap.Logger
}

func NewContactHandler(service *services.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{service: service, logger: logger}
}

func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contact", h.HandleSubmit)
	router.Get("/contacts", h.HandleList)
}

// ContactRequest represents the request body of the contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type contactResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	_, err := h.service.Submit(c.UserContext(), services.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Message received. We will get back to you soon.",
	})
}

func (h *ContactHandler) HandleList(c *fiber.Ctx) error {
	msgs, err := h.service.List(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}

	out := make([]contactResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, contactResponse{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Phone:     m.Phone,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"contacts": out,
	})
}
