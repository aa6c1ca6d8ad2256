package logger

import (
	"fmt"
	"net/http"

	"github.com/straye-as/backoffice-api/internal/auth"
	"github.com/straye-as/backoffice-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the application logger. JSON output is used in
// production or when the format is "json"; otherwise a colored console.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// ForRequest tags a logger with the request id and, when authenticated, the
// caller's organization and user
func ForRequest(log *zap.Logger, r *http.Request) *zap.Logger {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if user, ok := auth.FromContext(r.Context()); ok {
		fields = append(fields,
			zap.String("organization_id", user.OrganizationID.String()),
			zap.String("user_id", user.UserID.String()),
		)
		if user.IsSystem {
			fields = append(fields, zap.Bool("system", true))
		}
	}
	return log.With(fields...)
}
