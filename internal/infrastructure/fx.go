// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/yourusername/booru-search-bot/internal/infrastructure/database"
	"github.com/yourusername/booru-search-bot/internal/infrastructure/logger"
	"github.com/yourusername/booru-search-bot/internal/infrastructure/scheduler"
	"github.com/yourusername/booru-search-bot/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	database.Module,
	scheduler.Module,
	telegram.Module,
)
