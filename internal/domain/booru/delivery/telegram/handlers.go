// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/consts"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/conversation"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/dto"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/usecase/buissines"
	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

// Constants for Telegram API
const (
	RequestTimeout  = 30 * time.Second
	InlineCacheTime = 30 // seconds
)

// User-facing fallbacks for unexpected failures
const (
	msgStorageDown  = "⚠️ Сервис временно недоступен, попробуйте позже"
	msgGenericError = "❌ Произошла ошибка при обработке команды"
	msgFreeTextHint = "🤖 Напишите теги в инлайн-режиме или используйте команды. /help - справка"
)

// Handlers contains Telegram command, callback and inline-query handlers.
// Implements deps.TelegramSender interface.
type Handlers struct {
	uc     *buissines.UseCase
	conv   *conversation.Manager
	bot    *tgbot.Bot
	logger zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(uc *buissines.UseCase, conv *conversation.Manager, bot *tgbot.Bot, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		conv:   conv,
		bot:    bot,
		logger: logger,
	}
}

// SendMessage implements deps.TelegramSender interface
func (h *Handlers) SendMessage(ctx context.Context, userID int64, text string) error {
	if text == "" {
		h.logger.Warn().Int64("user_id", userID).Msg("Attempt to send empty message")
		return fmt.Errorf("message text cannot be empty")
	}

	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.SendMessage(msgCtx, &tgbot.SendMessageParams{
		ChatID:    userID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		h.logger.Error().Int64("user_id", userID).Err(err).Msg("Failed to send message")
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendPhoto implements deps.TelegramSender interface
func (h *Handlers) SendPhoto(ctx context.Context, userID int64, photoURL, caption string) error {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.SendPhoto(msgCtx, &tgbot.SendPhotoParams{
		ChatID:  userID,
		Photo:   &models.InputFileString{Data: photoURL},
		Caption: caption,
	})
	if err != nil {
		h.logger.Error().Int64("user_id", userID).Err(err).Msg("Failed to send photo")
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// HandleStart handles /start command
func (h *Handlers) HandleStart(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	h.logCommand(userID, "/start", "processing")

	resp, err := h.uc.HandleStart(ctx, userID, update.Message.From.Username)
	if err != nil {
		h.logError(userID, "/start", err)
		h.sendResponse(ctx, chatID, userErrorMessage(err))
		return
	}

	h.sendResponse(ctx, chatID, resp.Message)
	h.logCommand(userID, "/start", "success")
}

// HandleHelp handles /help command
func (h *Handlers) HandleHelp(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	resp, err := h.uc.HandleHelp(ctx)
	if err != nil {
		h.logError(userID, "/help", err)
		h.sendResponse(ctx, chatID, userErrorMessage(err))
		return
	}

	h.sendResponse(ctx, chatID, resp.Message)
	h.logCommand(userID, "/help", "success")
}

// HandleSettings handles /settings command: source selection keyboard
func (h *Handlers) HandleSettings(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	h.logCommand(userID, "/settings", "processing")

	resp, err := h.uc.SettingsMenu(ctx, userID)
	if err != nil {
		h.logError(userID, "/settings", err)
		h.sendResponse(ctx, chatID, userErrorMessage(err))
		return
	}

	h.sendWithKeyboard(ctx, chatID, resp.Message, sourceKeyboard(resp.Options, consts.CallbackSetSource))
	h.logCommand(userID, "/settings", "success")
}

// HandleSubscription handles /subscription command
func (h *Handlers) HandleSubscription(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	resp, err := h.uc.SubscriptionMenu(ctx, userID)
	if err != nil {
		h.logError(userID, "/subscription", err)
		h.sendResponse(ctx, chatID, userErrorMessage(err))
		return
	}

	toggleLabel := "Оформить подписку"
	if resp.IsSubscriber {
		toggleLabel = "Отключить подписку"
	}
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: toggleLabel, CallbackData: consts.CallbackToggleSub}},
		},
	}

	h.sendWithKeyboard(ctx, chatID, resp.Message, keyboard)
	h.logCommand(userID, "/subscription", "success")
}

// HandleTimer handles /timer command: starts the configuration dialog
func (h *Handlers) HandleTimer(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	reply := h.conv.Begin(userID)
	h.sendResponse(ctx, chatID, reply.Text)
	h.logCommand(userID, "/timer", "dialog started")
}

// HandleCancel handles /cancel command
func (h *Handlers) HandleCancel(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	reply, cancelled := h.conv.Cancel(userID)
	if !cancelled {
		h.sendResponse(ctx, chatID, "Нет активного диалога")
		return
	}
	h.sendResponse(ctx, chatID, reply.Text)
	h.logCommand(userID, "/cancel", "dialog cancelled")
}

// HandleText routes free-text messages into the conversation flow.
// Outside a dialog the user gets a usage hint.
func (h *Handlers) HandleText(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	reply, handled, err := h.conv.HandleText(ctx, userID, update.Message.Text)
	if err != nil {
		h.logError(userID, "dialog", err)
		h.sendResponse(ctx, chatID, userErrorMessage(err))
		return
	}
	if !handled {
		h.sendResponse(ctx, chatID, msgFreeTextHint)
		return
	}

	h.sendDialogReply(ctx, userID, chatID, reply)
}

// HandleSetSourceCallback handles set_source_* button presses
func (h *Handlers) HandleSetSourceCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.CallbackQuery.From.ID
	sourceKey := strings.TrimPrefix(update.CallbackQuery.Data, consts.CallbackSetSource)

	h.answerCallback(ctx, update.CallbackQuery.ID)

	resp, err := h.uc.SetSource(ctx, userID, sourceKey)
	if err != nil {
		h.logError(userID, "set_source", err)
		h.sendResponse(ctx, userID, userErrorMessage(err))
		return
	}

	h.sendResponse(ctx, userID, resp.Message)
	h.logCommand(userID, "set_source", sourceKey)
}

// HandleTimerSourceCallback handles timer_source_* button presses within
// the timer dialog
func (h *Handlers) HandleTimerSourceCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.CallbackQuery.From.ID
	sourceKey := strings.TrimPrefix(update.CallbackQuery.Data, consts.CallbackTimerSource)

	h.answerCallback(ctx, update.CallbackQuery.ID)

	reply, err := h.conv.SelectSource(ctx, userID, sourceKey)
	if err != nil {
		if pkgerrors.IsValidationError(err) {
			h.sendResponse(ctx, userID, "Диалог настройки не активен. Начните с /timer")
			return
		}
		h.logError(userID, "timer_source", err)
		h.sendResponse(ctx, userID, userErrorMessage(err))
		return
	}

	h.sendDialogReply(ctx, userID, userID, reply)
}

// HandleToggleSubCallback handles the subscription toggle button
func (h *Handlers) HandleToggleSubCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	userID := update.CallbackQuery.From.ID

	h.answerCallback(ctx, update.CallbackQuery.ID)

	resp, err := h.uc.ToggleSubscription(ctx, userID)
	if err != nil {
		h.logError(userID, "toggle_subscription", err)
		h.sendResponse(ctx, userID, userErrorMessage(err))
		return
	}

	h.sendResponse(ctx, userID, resp.Message)
	h.logCommand(userID, "toggle_subscription", "success")
}

// HandleInlineQuery handles inline search queries
func (h *Handlers) HandleInlineQuery(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	query := update.InlineQuery
	userID := query.From.ID

	req := &dto.InlineSearchRequest{
		UserID: userID,
		Query:  strings.TrimSpace(query.Query),
		Offset: query.Offset,
	}

	resp, err := h.uc.InlineSearch(ctx, req)
	if err != nil {
		h.logError(userID, "inline_query", err)
		h.answerInlineInfo(ctx, query.ID, "Ошибка", "Не удалось выполнить поиск, попробуйте позже")
		return
	}

	if resp.Info != "" {
		h.answerInlineInfo(ctx, query.ID, resp.InfoTitle, resp.Info)
		return
	}

	results := make([]models.InlineQueryResult, len(resp.Items))
	for i, item := range resp.Items {
		results[i] = &models.InlineQueryResultPhoto{
			ID:           item.ID,
			PhotoURL:     item.PhotoURL,
			ThumbnailURL: item.ThumbURL,
			Caption:      item.Caption,
		}
	}

	h.answerInline(ctx, query.ID, results, resp.NextOffset)

	h.logger.Info().
		Int64("user_id", userID).
		Str("query", req.Query).
		Int("results", len(results)).
		Msg("Inline query answered")
}

func (h *Handlers) answerInline(ctx context.Context, queryID string, results []models.InlineQueryResult, nextOffset string) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.AnswerInlineQuery(msgCtx, &tgbot.AnswerInlineQueryParams{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     InlineCacheTime,
		NextOffset:    nextOffset,
	})
	if err != nil {
		h.logger.Error().Str("query_id", queryID).Err(err).Msg("Failed to answer inline query")
	}
}

func (h *Handlers) answerInlineInfo(ctx context.Context, queryID, title, text string) {
	results := []models.InlineQueryResult{
		&models.InlineQueryResultArticle{
			ID:    "info",
			Title: title,
			InputMessageContent: &models.InputTextMessageContent{
				MessageText: text,
			},
		},
	}
	h.answerInline(ctx, queryID, results, "")
}

func (h *Handlers) answerCallback(ctx context.Context, callbackID string) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.AnswerCallbackQuery(msgCtx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to answer callback query")
	}
}

// sendDialogReply sends a dialog turn reply, attaching the timer source
// keyboard when the flow asks for it
func (h *Handlers) sendDialogReply(ctx context.Context, userID, chatID int64, reply conversation.Reply) {
	if !reply.ShowSourceKeyboard {
		h.sendResponse(ctx, chatID, reply.Text)
		return
	}

	menu, err := h.uc.SettingsMenu(ctx, userID)
	if err != nil {
		h.logError(userID, "dialog", err)
		h.sendResponse(ctx, chatID, userErrorMessage(err))
		return
	}

	h.sendWithKeyboard(ctx, chatID, reply.Text, sourceKeyboard(menu.Options, consts.CallbackTimerSource))
}

func (h *Handlers) sendResponse(ctx context.Context, chatID int64, text string) {
	if err := h.SendMessage(ctx, chatID, text); err != nil {
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send Telegram response")
	}
}

func (h *Handlers) sendWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.SendMessage(msgCtx, &tgbot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send keyboard message")
	}
}

// sourceKeyboard renders one button per source, restricted sources
// included: denial happens on selection, not by hiding the option
func sourceKeyboard(options []dto.SourceOption, callbackPrefix string) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, len(options))
	for i, option := range options {
		rows[i] = []models.InlineKeyboardButton{
			{Text: option.Label, CallbackData: callbackPrefix + option.Key},
		}
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// userErrorMessage maps an internal error to a safe user-facing message
func userErrorMessage(err error) string {
	if pkgerrors.IsStorageError(err) {
		return msgStorageDown
	}
	return msgGenericError
}

// logCommand logs successful commands
func (h *Handlers) logCommand(userID int64, command, result string) {
	h.logger.Info().Int64("user_id", userID).Str("command", command).Str("result", result).Msg("Telegram command processed")
}

// logError logs command errors
func (h *Handlers) logError(userID int64, command string, err error) {
	h.logger.Error().Int64("user_id", userID).Str("command", command).Err(err).Msg("Telegram command failed")
}
