// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/yourusername/booru-search-bot/config"
	"github.com/yourusername/booru-search-bot/internal/domain"
	"github.com/yourusername/booru-search-bot/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, database, scheduler, telegram bot)
		infrastructure.Module,

		// Domain (booru search business logic)
		domain.Module,
	)
}
