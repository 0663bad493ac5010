package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers groups the application's log streams. Each stream writes JSON
// lines to its own file.
type Loggers struct {
	Error    *zap.Logger
	Audit    *zap.Logger
	Request  *zap.Logger
	Security *zap.Logger
	System   *zap.Logger
}

func newLogger(filePath string, level zapcore.Level) (*zap.Logger, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	ws := zapcore.AddSync(file)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		level,
	)
	return zap.New(core), nil
}

// New opens one log file per stream under dir, creating dir if needed.
func New(dir string) (*Loggers, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}

	l := &Loggers{}
	streams := []struct {
		name  string
		level zapcore.Level
		dst   **zap.Logger
	}{
		{"errors.log", zapcore.ErrorLevel, &l.Error},
		{"audit.log", zapcore.InfoLevel, &l.Audit},
		{"request.log", zapcore.InfoLevel, &l.Request},
		{"security.log", zapcore.WarnLevel, &l.Security},
		{"system.log", zapcore.InfoLevel, &l.System},
	}

	for _, s := range streams {
		zl, err := newLogger(filepath.Join(dir, s.name), s.level)
		if err != nil {
			l.Sync()
			return nil, fmt.Errorf("cannot create %s logger: %w", s.name, err)
		}
		*s.dst = zl
	}
	return l, nil
}

// NewNop returns loggers that discard everything.
func NewNop() *Loggers {
	nop := zap.NewNop()
	return &Loggers{Error: nop, Audit: nop, Request: nop, Security: nop, System: nop}
}

// Sync flushes every stream.
func (l *Loggers) Sync() {
	for _, zl := range []*zap.Logger{l.Error, l.Audit, l.Request, l.Security, l.System} {
		if zl != nil {
			_ = zl.Sync()
		}
	}
}
