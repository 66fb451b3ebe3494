// Package providers contains dependency injection providers for all services.
package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/shelfline/shelfline-server/internal/config"
	"github.com/shelfline/shelfline-server/internal/logger"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// ProvideConfig loads the application configuration.
func ProvideConfig(do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the application logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	})

	log.Info("Logger initialized",
		"environment", cfg.App.Environment,
		"level", cfg.Logger.Level,
	)
	return log, nil
}
