package app

import (
	"profile-api/internal/config"

	"go.uber.org/zap"
)

// NewLogger returns a development logger outside production so local runs
// get readable console output.
func NewLogger(cfg config.AppConfig) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("app", cfg.AppName)), nil
}
