// Package logger builds the zap logger shared by the API server, the
// scheduler and the CLI commands.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SinaHo/investment-backend/internal/config"
)

// AppName is attached to every entry as the "app" field.
const AppName = "investd"

// New builds the process logger from the logging section. Format "json"
// selects the production encoder, anything else the console encoder.
// An empty level means info.
func New(c config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if c.Level != "" {
		parsed, err := zapcore.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("logging.level %q: %w", c.Level, err)
		}
		level = parsed
	}

	zc := zap.NewDevelopmentConfig()
	if c.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.InitialFields = map[string]interface{}{"app": AppName}
	return zc.Build(zap.AddCaller())
}
