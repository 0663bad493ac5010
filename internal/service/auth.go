package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"simple-todo/internal/apperror"
	"simple-todo/internal/auth"
	"simple-todo/internal/models"
	"simple-todo/internal/repository"
	"simple-todo/pkg/logger"
)

const (
	invalidCredentials = "Invalid username or password"
	// bcrypt ignores input past this length
	maxPasswordBytes = 72
)

// Credentials is the body of register and login.
type Credentials struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"-"`
	User      models.PublicUser `json:"user"`
}

// AuthService registers and authenticates users.
type AuthService struct {
	users    repository.UserStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	validate *validator.Validate
	log      *logger.Loggers
}

func NewAuthService(users repository.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenManager, validate *validator.Validate, log *logger.Loggers) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, validate: validate, log: log}
}

func (s *AuthService) normalize(in Credentials) (Credentials, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return in, apperror.Validation(validationMessage(err, "Username and password are required"))
	}
	if len(in.Password) > maxPasswordBytes {
		return in, apperror.Validation("Password must be at most 72 bytes")
	}
	return in, nil
}

// Register stores a new user with a bcrypt hash of the password.
func (s *AuthService) Register(ctx context.Context, in Credentials) error {
	in, err := s.normalize(in)
	if err != nil {
		return err
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		s.log.Security.Warn("Duplicate username", zap.String("username", in.Username))
		return apperror.Conflict("Username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperror.Internal("find user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return apperror.Internal("hash password", err)
	}

	user, err := s.users.Create(ctx, models.User{Username: in.Username, PasswordHash: hash})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Security.Warn("Duplicate username", zap.String("username", in.Username))
			return apperror.Conflict("Username already exists")
		}
		return apperror.Internal("create user", err)
	}

	s.log.Audit.Info("User registered successfully", zap.String("user_id", user.ID))
	return nil
}

// Login checks the credentials and mints a session token. Unknown users and
// wrong passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, in Credentials) (LoginResult, error) {
	in, err := s.normalize(in)
	if err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.FindByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		_ = s.hasher.CompareDummy(in.Password)
		s.log.Security.Warn("Login failed", zap.String("username", in.Username))
		return LoginResult{}, apperror.Auth(invalidCredentials)
	case err != nil:
		return LoginResult{}, apperror.Internal("find user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		s.log.Security.Warn("Login failed", zap.String("username", in.Username))
		return LoginResult{}, apperror.Auth(invalidCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return LoginResult{}, apperror.Internal("issue token", err)
	}

	s.log.Audit.Info("Login success", zap.String("user_id", user.ID))
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// Me returns the public view of the caller.
func (s *AuthService) Me(ctx context.Context, userID string) (models.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.PublicUser{}, apperror.NotFound("User not found")
		}
		return models.PublicUser{}, apperror.Internal("find user", err)
	}
	return user.Public(), nil
}
