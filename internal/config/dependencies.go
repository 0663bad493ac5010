package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"simple-todo/configs"
	"simple-todo/internal/auth"
	"simple-todo/internal/repository"
	"simple-todo/internal/service"
	"simple-todo/pkg/logger"
)

// Dependencies is everything the HTTP layer needs, built once at startup.
type Dependencies struct {
	Config   configs.Config
	Log      *logger.Loggers
	Validate *validator.Validate
	Tokens   *auth.TokenManager
	Auth     *service.AuthService
	Tasks    *service.TaskService
}

// NewDependencies wires services over the given stores. A nil now uses
// time.Now.
func NewDependencies(cfg configs.Config, log *logger.Loggers, users repository.UserStore, tasks repository.TaskStore, now func() time.Time) (*Dependencies, error) {
	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	validate := service.NewValidator()
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTExpiresIn, now)

	return &Dependencies{
		Config:   cfg,
		Log:      log,
		Validate: validate,
		Tokens:   tokens,
		Auth:     service.NewAuthService(users, hasher, tokens, validate, log),
		Tasks:    service.NewTaskService(tasks, validate, log, now),
	}, nil
}
