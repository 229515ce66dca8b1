// Package telegram contains Telegram delivery layer
package telegram

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/consts"
)

// Router registers Telegram bot handlers
type Router struct {
	handlers *Handlers
	logger   zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes registers all command, callback and inline handlers on the bot
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	// Command handlers
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, r.handlers.HandleStart)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, r.handlers.HandleHelp)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/settings", tgbot.MatchTypeExact, r.handlers.HandleSettings)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/subscription", tgbot.MatchTypeExact, r.handlers.HandleSubscription)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/timer", tgbot.MatchTypeExact, r.handlers.HandleTimer)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/cancel", tgbot.MatchTypeExact, r.handlers.HandleCancel)

	// Callback handlers for keyboards
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.CallbackSetSource, tgbot.MatchTypePrefix, r.handlers.HandleSetSourceCallback)
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.CallbackTimerSource, tgbot.MatchTypePrefix, r.handlers.HandleTimerSourceCallback)
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.CallbackToggleSub, tgbot.MatchTypeExact, r.handlers.HandleToggleSubCallback)

	// Inline search queries
	bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.InlineQuery != nil
	}, r.handlers.HandleInlineQuery)

	// Free-text messages feed the conversation flow. One persistent
	// handler dispatches by the user's current dialog stage.
	bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil &&
			update.Message.Text != "" &&
			!strings.HasPrefix(update.Message.Text, "/")
	}, r.handlers.HandleText)

	r.logger.Info().Msg("All Telegram handlers registered successfully")
}

// RegisterCommandMenu publishes the command list to the Telegram client menu
func (r *Router) RegisterCommandMenu(ctx context.Context, bot *tgbot.Bot) {
	commands := make([]models.BotCommand, len(consts.AllCommands))
	for i, cmd := range consts.AllCommands {
		commands[i] = models.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		}
	}

	if _, err := bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: commands}); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to register command menu")
		return
	}
	r.logger.Info().Int("commands", len(commands)).Msg("Command menu registered")
}
