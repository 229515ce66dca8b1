// Package buissines contains business logic for the booru domain
package buissines

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/access"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/deps"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/dto"
	booruerrors "github.com/yourusername/booru-search-bot/internal/domain/booru/errors"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/search"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/sources"
	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

// Informational inline answers
const (
	infoEnterTagsTitle = "Введите теги для поиска"
	infoEnterTags      = "Напишите теги после имени бота, например: @бот cat_ears"
	infoNoAccessTitle  = "❌ Доступ ограничен"
	infoNoAccess       = "У вас нет доступа к этому источнику. Оформите подписку."
	infoNoResultsTitle = "Ничего не найдено"
	infoNoResults      = "По вашему запросу ничего не найдено 😢\nПопробуйте другие теги"
)

// UseCase contains business logic for bot operations
type UseCase struct {
	settings  deps.SettingsRepository
	searcher  *search.Client
	checker   *access.Checker
	scheduler deps.Scheduler
	sender    deps.TelegramSender
	logger    zerolog.Logger
}

// NewUseCase creates a new UseCase instance
// Note: sender is not passed here to break cyclic dependency
// Use SetSender after creating the Telegram handlers
func NewUseCase(
	settings deps.SettingsRepository,
	searcher *search.Client,
	checker *access.Checker,
	scheduler deps.Scheduler,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		settings:  settings,
		searcher:  searcher,
		checker:   checker,
		scheduler: scheduler,
		logger:    logger,
	}
}

// SetSender sets the TelegramSender after construction
// This is called by fx.Invoke to resolve cyclic dependency
func (uc *UseCase) SetSender(sender deps.TelegramSender) {
	uc.sender = sender
}

// HandleStart handles /start command
func (uc *UseCase) HandleStart(ctx context.Context, userID int64, username string) (*dto.CommandResponse, error) {
	uc.logger.Info().
		Int64("user_id", userID).
		Str("username", username).
		Msg("User started bot")

	message := `👋 <b>Привет! Я бот для поиска артов.</b>

Напишите теги в инлайн-режиме (например, @бот cat_ears) и я найду картинки.

<b>Доступные команды:</b>
/settings - выбрать источник поиска
/subscription - статус подписки
/timer - настроить ежедневную автоотправку
/cancel - отменить текущий диалог
/help - показать справку`

	return &dto.CommandResponse{Message: message}, nil
}

// HandleHelp handles /help command
func (uc *UseCase) HandleHelp(ctx context.Context) (*dto.CommandResponse, error) {
	message := `📚 <b>Справка:</b>

<b>Поиск:</b>
Напишите теги после имени бота в любом чате — результаты появятся инлайн.

<b>Источники:</b>
/settings — выбрать источник. Источники с пометкой 🔒 доступны только подписчикам.

<b>Автоотправка:</b>
/timer — каждый день в выбранное время бот пришлёт один пост по вашим тегам.

<b>Команды:</b>
/start - начать работу с ботом
/settings - выбрать источник
/subscription - статус подписки
/timer - настроить автоотправку
/cancel - отменить диалог
/help - показать эту справку`

	return &dto.CommandResponse{Message: message}, nil
}

// InlineSearch runs one inline query and shapes the answer. All expected
// failures (no access, backend down, nothing found) come back as an
// informational item rather than an error; only storage problems and
// programming errors propagate.
func (uc *UseCase) InlineSearch(ctx context.Context, req *dto.InlineSearchRequest) (*dto.InlineSearchResponse, error) {
	if req.Query == "" {
		return &dto.InlineSearchResponse{
			InfoTitle: infoEnterTagsTitle,
			Info:      infoEnterTags,
		}, nil
	}

	settings, err := uc.settings.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	allowed, err := uc.checker.CanAccess(ctx, req.UserID, settings.Source)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &dto.InlineSearchResponse{
			InfoTitle: infoNoAccessTitle,
			Info:      infoNoAccess,
		}, nil
	}

	page := NormalizeOffset(req.Offset)
	result, err := uc.searcher.Search(ctx, settings.Source, req.Query, page)
	if err != nil {
		if pkgerrors.IsTransportError(err) {
			// backend detail stays in the log, the user sees "nothing found"
			return &dto.InlineSearchResponse{
				InfoTitle: infoNoResultsTitle,
				Info:      infoNoResults,
			}, nil
		}
		return nil, err
	}

	if len(result.Posts) == 0 {
		return &dto.InlineSearchResponse{
			InfoTitle: infoNoResultsTitle,
			Info:      infoNoResults,
		}, nil
	}

	desc, err := sources.Get(settings.Source)
	if err != nil {
		return nil, err
	}

	items := make([]dto.InlinePhotoItem, len(result.Posts))
	for i, post := range result.Posts {
		items[i] = dto.InlinePhotoItem{
			ID:       fmt.Sprintf("%s_%d_%d_%d", settings.Source, post.ID, page, i),
			PhotoURL: post.FileURL,
			ThumbURL: post.PreviewURL,
			Caption:  desc.RenderCaption(post),
		}
	}

	return &dto.InlineSearchResponse{
		Items:      items,
		NextOffset: strconv.Itoa(result.NextPage),
	}, nil
}

// SettingsMenu builds the /settings source keyboard
func (uc *UseCase) SettingsMenu(ctx context.Context, userID int64) (*dto.SettingsMenuResponse, error) {
	settings, err := uc.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, err := sources.Get(settings.Source)
	if err != nil {
		return nil, err
	}

	options := make([]dto.SourceOption, 0)
	for _, desc := range sources.All() {
		label := desc.DisplayName
		if desc.Restricted {
			label += " 🔒 (только для подписчиков)"
		}
		options = append(options, dto.SourceOption{
			Key:        desc.Key,
			Label:      label,
			Restricted: desc.Restricted,
		})
	}

	return &dto.SettingsMenuResponse{
		Message: fmt.Sprintf("Текущий источник: %s\nВыберите новый источник:", current.DisplayName),
		Options: options,
	}, nil
}

// SetSource changes the user's selected source after an access re-check
func (uc *UseCase) SetSource(ctx context.Context, userID int64, sourceKey string) (*dto.CommandResponse, error) {
	desc, err := sources.Get(sourceKey)
	if err != nil {
		return nil, pkgerrors.NewUnknownSourceError(sourceKey)
	}

	allowed, err := uc.checker.CanAccess(ctx, userID, sourceKey)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &dto.CommandResponse{Message: infoNoAccess}, nil
	}

	if err := uc.settings.UpdateSource(ctx, userID, sourceKey); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Int64("user_id", userID).
		Str("source", sourceKey).
		Msg("Source changed")

	return &dto.CommandResponse{Message: fmt.Sprintf("✅ Источник изменен на: %s", desc.DisplayName)}, nil
}

// SubscriptionMenu builds the /subscription status menu
func (uc *UseCase) SubscriptionMenu(ctx context.Context, userID int64) (*dto.SubscriptionMenuResponse, error) {
	settings, err := uc.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := "Подписка: ❌ не активна\nПодписка открывает доступ к источникам с пометкой 🔒"
	if settings.IsSubscriber {
		message = "Подписка: ✅ активна"
	}

	return &dto.SubscriptionMenuResponse{
		Message:      message,
		IsSubscriber: settings.IsSubscriber,
	}, nil
}

// ToggleSubscription flips the subscriber flag
func (uc *UseCase) ToggleSubscription(ctx context.Context, userID int64) (*dto.CommandResponse, error) {
	settings, err := uc.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	subscriber := !settings.IsSubscriber
	if err := uc.settings.UpdateSubscriber(ctx, userID, subscriber); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Int64("user_id", userID).
		Bool("subscriber", subscriber).
		Msg("Subscription toggled")

	if subscriber {
		return &dto.CommandResponse{Message: "✅ Подписка активирована"}, nil
	}
	return &dto.CommandResponse{Message: "Подписка отключена"}, nil
}

// DeliverScheduled performs one auto-send fire for a user. Settings and
// access are re-read on every fire; a lapsed subscription or a failed
// search skips the delivery silently.
func (uc *UseCase) DeliverScheduled(ctx context.Context, userID int64) {
	if uc.sender == nil {
		uc.logger.Error().Err(booruerrors.ErrSenderNotSet).Msg("Cannot deliver scheduled post")
		return
	}

	settings, err := uc.settings.Get(ctx, userID)
	if err != nil {
		uc.logger.Warn().Int64("user_id", userID).Err(err).Msg("Auto-send skipped: settings unavailable")
		return
	}

	if !settings.HasAutoSend() {
		uc.logger.Debug().Int64("user_id", userID).Msg("Auto-send skipped: schedule cleared")
		uc.scheduler.Unregister(userID)
		return
	}

	sourceKey := *settings.AutoSendSource
	desc, err := sources.Get(sourceKey)
	if err != nil {
		uc.logger.Warn().Int64("user_id", userID).Str("source", sourceKey).Msg("Auto-send skipped: unknown source")
		return
	}

	if !access.Allowed(settings, desc) {
		uc.logger.Debug().
			Int64("user_id", userID).
			Str("source", sourceKey).
			Msg("Auto-send skipped: access lapsed")
		return
	}

	result, err := uc.searcher.Search(ctx, sourceKey, *settings.AutoSendTags, 1)
	if err != nil || len(result.Posts) == 0 {
		uc.logger.Debug().
			Int64("user_id", userID).
			Str("source", sourceKey).
			Err(err).
			Msg("Auto-send skipped: no result")
		return
	}

	post := result.Posts[0]
	if err := uc.sender.SendPhoto(ctx, userID, post.FileURL, desc.RenderCaption(post)); err != nil {
		uc.logger.Warn().Int64("user_id", userID).Err(err).Msg("Auto-send delivery failed")
		return
	}

	uc.logger.Info().
		Int64("user_id", userID).
		Str("source", sourceKey).
		Int64("post_id", post.ID).
		Msg("Auto-send delivered")
}

// RestoreSchedules re-registers auto-send jobs from persisted settings.
// Called once at startup so schedules survive a process restart.
func (uc *UseCase) RestoreSchedules(ctx context.Context) error {
	rows, err := uc.settings.ListAutoSend(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		userID := row.ID
		if err := uc.scheduler.Register(userID, *row.AutoSendTime, func() {
			uc.DeliverScheduled(context.Background(), userID)
		}); err != nil {
			uc.logger.Error().
				Int64("user_id", userID).
				Str("cron", *row.AutoSendTime).
				Err(err).
				Msg("Failed to restore auto-send job")
			continue
		}
	}

	uc.logger.Info().Int("count", len(rows)).Msg("Auto-send schedules restored")
	return nil
}

// NormalizeOffset maps an inline-query offset to a 1-based page number.
// Telegram sends an empty offset on the first query; anything unparsable
// falls back to page 1.
func NormalizeOffset(offset string) int {
	if offset == "" {
		return 1
	}
	page, err := strconv.Atoi(offset)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
