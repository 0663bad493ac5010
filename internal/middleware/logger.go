package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"simple-todo/internal/apperror"
	"simple-todo/pkg/logger"
)

// ErrorHandler recovers panics into an internal error and logs every
// request with its outcome.
func ErrorHandler(log *logger.Loggers) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error.Error("Recovered from panic",
					zap.String("panic", fmt.Sprint(r)),
					zap.String("stack", string(debug.Stack())),
				)
				err = apperror.Internal("panic", fmt.Errorf("%v", r))
			}

			log.Request.Info("Incoming request",
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Duration("latency", time.Since(start)),
				zap.NamedError("error", err),
			)
		}()
		return c.Next()
	}
}
