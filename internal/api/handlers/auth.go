package handlers

import (
	"github.com/gofiber/fiber/v2"

	"simple-todo/internal/middleware"
	"simple-todo/internal/service"
	"simple-todo/pkg/logger"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	auth *service.AuthService
	log  *logger.Loggers
}

func NewAuthHandler(auth *service.AuthService, log *logger.Loggers) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.Credentials
	if err := c.BodyParser(&req); err != nil {
		return badRequest(h.log, "register", err)
	}

	if err := h.auth.Register(c.UserContext(), req); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.Credentials
	if err := c.BodyParser(&req); err != nil {
		return badRequest(h.log, "login", err)
	}

	res, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.auth.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
