// Package booru contains the booru domain module
package booru

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/access"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/conversation"
	telegramDelivery "github.com/yourusername/booru-search-bot/internal/domain/booru/delivery/telegram"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/deps"
	sqliteRepo "github.com/yourusername/booru-search-bot/internal/domain/booru/repository/sqlite"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/search"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/usecase/buissines"
	"github.com/yourusername/booru-search-bot/internal/infrastructure/scheduler"
	"github.com/yourusername/booru-search-bot/internal/infrastructure/telegram"
)

// Module provides booru domain components for fx dependency injection
var Module = fx.Module("booru",
	// Repository
	fx.Provide(sqliteRepo.NewSettingsRepository),

	// Domain services
	fx.Provide(access.NewChecker),
	fx.Provide(search.NewClient),
	fx.Provide(provideScheduler),
	fx.Provide(conversation.NewManager),

	// UseCase
	fx.Provide(buissines.NewUseCase),

	// Delivery - Telegram (needs raw bot from infrastructure)
	fx.Provide(provideTelegramHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Wire cyclic dependencies, register routes, restore schedules
	fx.Invoke(wireAndRegister),
)

// provideScheduler exposes the cron scheduler behind the domain interface
func provideScheduler(s *scheduler.CronScheduler) deps.Scheduler {
	return s
}

// provideTelegramHandlers creates Telegram handlers with raw bot
func provideTelegramHandlers(
	uc *buissines.UseCase,
	conv *conversation.Manager,
	bot *telegram.Bot,
	logger zerolog.Logger,
) *telegramDelivery.Handlers {
	return telegramDelivery.NewHandlers(uc, conv, bot.Raw(), logger)
}

// wireAndRegister resolves cyclic dependencies and registers routes
func wireAndRegister(
	lc fx.Lifecycle,
	uc *buissines.UseCase,
	conv *conversation.Manager,
	handlers *telegramDelivery.Handlers,
	router *telegramDelivery.Router,
	bot *telegram.Bot,
	logger zerolog.Logger,
) {
	// Handlers implements deps.TelegramSender, UseCase implements
	// deps.AutoSendDispatcher. Both cycles resolve after construction:
	// UseCase -> TelegramSender <- Handlers -> UseCase
	// Manager -> AutoSendDispatcher <- UseCase
	uc.SetSender(handlers)
	conv.SetDispatcher(uc)

	// Register Telegram routes
	router.RegisterRoutes(bot.Raw())

	// Publish the command menu and re-register persisted auto-send jobs
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			router.RegisterCommandMenu(ctx, bot.Raw())
			if err := uc.RestoreSchedules(ctx); err != nil {
				// a cold store must not block startup, jobs re-register
				// the next time users complete the timer dialog
				logger.Error().Err(err).Msg("Failed to restore auto-send schedules")
			}
			return nil
		},
	})
}
