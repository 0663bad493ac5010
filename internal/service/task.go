package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"simple-todo/internal/apperror"
	"simple-todo/internal/models"
	"simple-todo/internal/repository"
	"simple-todo/pkg/logger"
)

const todoNotFound = "Todo not found"

// CreateTaskInput is the body of POST /api/todo.
type CreateTaskInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// updateTaskInput validates the present fields of a patch.
type updateTaskInput struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// TaskService is the owner-scoped CRUD over todos.
type TaskService struct {
	tasks    repository.TaskStore
	validate *validator.Validate
	log      *logger.Loggers
	now      func() time.Time
}

// NewTaskService builds the service. A nil now defaults to time.Now.
func NewTaskService(tasks repository.TaskStore, validate *validator.Validate, log *logger.Loggers, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{tasks: tasks, validate: validate, log: log, now: now}
}

// timestamp is UTC with millisecond precision, the finest every store keeps.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *TaskService) List(ctx context.Context, callerID string) ([]models.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, apperror.Internal("list todos", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, callerID string, in CreateTaskInput) (models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		return models.Task{}, apperror.Validation(validationMessage(err, "Title is required"))
	}

	now := s.timestamp()
	task, err := s.tasks.Create(ctx, models.Task{
		OwnerID:     callerID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return models.Task{}, apperror.Internal("create todo", err)
	}

	s.log.Audit.Info("Todo created", zap.String("user_id", callerID), zap.String("todo_id", task.ID))
	return task, nil
}

// Update applies the present fields of patch and refreshes updatedAt.
func (s *TaskService) Update(ctx context.Context, callerID, taskID string, patch models.TaskPatch) (models.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Task{}, apperror.Validation("Title cannot be empty")
		}
		patch.Title = &title
	}
	if err := s.validate.Struct(updateTaskInput{Title: patch.Title, Description: patch.Description}); err != nil {
		return models.Task{}, apperror.Validation(validationMessage(err, "Invalid todo"))
	}
	patch.UpdatedAt = s.timestamp()

	task, err := s.tasks.Update(ctx, callerID, taskID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Task{}, apperror.NotFound(todoNotFound)
		}
		return models.Task{}, apperror.Internal("update todo", err)
	}

	s.log.Audit.Info("Todo updated", zap.String("user_id", callerID), zap.String("todo_id", task.ID))
	return task, nil
}

// Delete removes the caller's todo and returns it.
func (s *TaskService) Delete(ctx context.Context, callerID, taskID string) (models.Task, error) {
	task, err := s.tasks.Delete(ctx, callerID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Task{}, apperror.NotFound(todoNotFound)
		}
		return models.Task{}, apperror.Internal("delete todo", err)
	}

	s.log.Audit.Info("Todo deleted", zap.String("user_id", callerID), zap.String("todo_id", task.ID))
	return task, nil
}
