package handlers

import (
	"github.com/gofiber/fiber/v2"

	"simple-todo/internal/middleware"
	"simple-todo/internal/models"
	"simple-todo/internal/service"
	"simple-todo/pkg/logger"
)

// TodoHandler serves /api/todo. Every route runs behind UseToken.
type TodoHandler struct {
	tasks *service.TaskService
	log   *logger.Loggers
}

func NewTodoHandler(tasks *service.TaskService, log *logger.Loggers) *TodoHandler {
	return &TodoHandler{tasks: tasks, log: log}
}

// List handles GET /api/todo.
func (h *TodoHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	todos, err := h.tasks.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(todos)
}

// Create handles POST /api/todo.
func (h *TodoHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req service.CreateTaskInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(h.log, "create todo", err)
	}

	todo, err := h.tasks.Create(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"todo": todo})
}

// Update handles PUT /api/todo/:id.
func (h *TodoHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var patch models.TaskPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(h.log, "update todo", err)
	}

	todo, err := h.tasks.Update(c.UserContext(), userID, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(todo)
}

// Delete handles DELETE /api/todo/:id.
func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	todo, err := h.tasks.Delete(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": todo})
}
