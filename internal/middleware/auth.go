package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"simple-todo/internal/apperror"
	"simple-todo/internal/auth"
	"simple-todo/pkg/logger"
)

// LocalUserID is the fiber.Ctx locals key holding the caller id.
const LocalUserID = "userID"

// UseToken guards a route with the bearer token. Every failure is a 401;
// the caller id is stored in the locals and in the user context.
func UseToken(tokens *auth.TokenManager, log *logger.Loggers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperror.Auth("Missing credentials")
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Security.Warn("Malformed authorization header", zap.String("ip", c.IP()))
			return apperror.Auth("Invalid or expired token")
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			log.Security.Warn("Rejected token", zap.String("ip", c.IP()), zap.Error(err))
			return apperror.Auth("Invalid or expired token")
		}

		c.Locals(LocalUserID, userID)
		c.SetUserContext(auth.WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// UserID returns the caller id set by UseToken.
func UserID(c *fiber.Ctx) (string, error) {
	if userID, ok := auth.UserIDFrom(c.UserContext()); ok {
		return userID, nil
	}
	return "", apperror.Auth("Missing credentials")
}
