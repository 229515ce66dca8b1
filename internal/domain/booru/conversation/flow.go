// Package conversation drives the multi-turn timer configuration dialog.
// One Manager holds the per-user dialog state behind a mutex and is
// dispatched from the single persistent text handler; handlers are never
// re-registered per dialog turn.
package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/access"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/deps"
	booruerrors "github.com/yourusername/booru-search-bot/internal/domain/booru/errors"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/sources"
)

// Stage is the current step within a user's configuration dialog
type Stage int

// Dialog stages
const (
	StageIdle Stage = iota
	StageAwaitingTime
	StageAwaitingTimerSource
	StageAwaitingTimerTags
)

// Reply is what the front-end should send back after a dialog turn
type Reply struct {
	Text string

	// ShowSourceKeyboard asks the front-end to attach the source
	// selection keyboard to the reply
	ShowSourceKeyboard bool
}

// Prompts and confirmations for the timer dialog
const (
	promptTime        = "⏰ Во сколько присылать ежедневный пост? Отправьте время в формате HH:MM, например 21:00"
	promptTimeInvalid = "❌ Неверный формат времени. Используйте HH:MM, например 21:00"
	promptSource      = "Выберите источник для ежедневной отправки:"
	promptTags        = "🏷 Теперь отправьте теги для поиска, например \"cat ears\""
	promptTagsEmpty   = "❌ Теги не могут быть пустыми. Отправьте хотя бы один тег"
	replyDenied       = "❌ Доступ к этому источнику ограничен. Оформите подписку."
	replyCancelled    = "Диалог отменён"
)

var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

type state struct {
	stage         Stage
	pendingHour   int
	pendingMinute int
	pendingSource string
}

// Manager is the per-user dialog state machine
type Manager struct {
	settings   deps.SettingsRepository
	scheduler  deps.Scheduler
	dispatcher deps.AutoSendDispatcher
	logger     zerolog.Logger

	mu     sync.Mutex
	states map[int64]*state
}

// NewManager creates a new conversation manager.
// Note: the dispatcher is not passed here to break the cyclic dependency
// with the use case; call SetDispatcher before completing any dialog.
func NewManager(settings deps.SettingsRepository, scheduler deps.Scheduler, logger zerolog.Logger) *Manager {
	return &Manager{
		settings:  settings,
		scheduler: scheduler,
		logger:    logger,
		states:    make(map[int64]*state),
	}
}

// SetDispatcher sets the auto-send dispatcher after construction
func (m *Manager) SetDispatcher(dispatcher deps.AutoSendDispatcher) {
	m.dispatcher = dispatcher
}

// Stage returns the user's current dialog stage
func (m *Manager) Stage(userID int64) Stage {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[userID]
	if !ok {
		return StageIdle
	}
	return st.stage
}

// Begin starts the timer dialog for a user, discarding any dialog already
// in progress
func (m *Manager) Begin(userID int64) Reply {
	m.mu.Lock()
	m.states[userID] = &state{stage: StageAwaitingTime}
	m.mu.Unlock()

	m.logger.Debug().Int64("user_id", userID).Msg("Timer dialog started")
	return Reply{Text: promptTime}
}

// Cancel discards the user's dialog. Returns false when no dialog was
// in progress.
func (m *Manager) Cancel(userID int64) (Reply, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.states[userID]; !ok {
		return Reply{}, false
	}
	delete(m.states, userID)
	return Reply{Text: replyCancelled}, true
}

// HandleText routes a free-text message to the user's current dialog
// stage. The second return value is false when the user has no dialog in
// progress and the text is not for us.
func (m *Manager) HandleText(ctx context.Context, userID int64, text string) (Reply, bool, error) {
	m.mu.Lock()
	st, ok := m.states[userID]
	m.mu.Unlock()
	if !ok || st.stage == StageIdle {
		return Reply{}, false, nil
	}

	switch st.stage {
	case StageAwaitingTime:
		reply := m.handleTime(userID, st, text)
		return reply, true, nil
	case StageAwaitingTimerSource:
		// source is picked via keyboard; nudge the user back to it
		return Reply{Text: promptSource, ShowSourceKeyboard: true}, true, nil
	case StageAwaitingTimerTags:
		reply, err := m.handleTags(ctx, userID, st, text)
		return reply, true, err
	default:
		return Reply{}, false, nil
	}
}

// handleTime validates HH:MM input. Invalid input keeps the stage and
// re-prompts; it never aborts the dialog.
func (m *Manager) handleTime(userID int64, st *state, text string) Reply {
	hour, minute, err := ParseHHMM(strings.TrimSpace(text))
	if err != nil {
		m.logger.Debug().Int64("user_id", userID).Str("input", text).Msg("Rejected time input")
		return Reply{Text: promptTimeInvalid}
	}

	m.mu.Lock()
	st.pendingHour = hour
	st.pendingMinute = minute
	st.stage = StageAwaitingTimerSource
	m.mu.Unlock()

	return Reply{Text: promptSource, ShowSourceKeyboard: true}
}

// SelectSource advances the dialog when the user picks a source from the
// keyboard. Restricted sources are listed but selecting one without
// access keeps the stage and reports the denial.
func (m *Manager) SelectSource(ctx context.Context, userID int64, sourceKey string) (Reply, error) {
	m.mu.Lock()
	st, ok := m.states[userID]
	m.mu.Unlock()
	if !ok || st.stage != StageAwaitingTimerSource {
		return Reply{}, booruerrors.ErrNoActiveDialog
	}

	desc, err := sources.Get(sourceKey)
	if err != nil {
		return Reply{}, err
	}

	settings, err := m.settings.Get(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	if !access.Allowed(settings, desc) {
		m.logger.Debug().
			Int64("user_id", userID).
			Str("source", sourceKey).
			Msg("Timer source denied")
		return Reply{Text: replyDenied, ShowSourceKeyboard: true}, nil
	}

	m.mu.Lock()
	st.pendingSource = sourceKey
	st.stage = StageAwaitingTimerTags
	m.mu.Unlock()

	return Reply{Text: promptTags}, nil
}

// handleTags completes the dialog: persist the schedule, register the
// recurring job, and reset to idle.
func (m *Manager) handleTags(ctx context.Context, userID int64, st *state, text string) (Reply, error) {
	tags := strings.TrimSpace(text)
	if tags == "" {
		return Reply{Text: promptTagsEmpty}, nil
	}

	if m.dispatcher == nil {
		return Reply{}, booruerrors.ErrSenderNotSet
	}

	cronSpec := CronSpec(st.pendingHour, st.pendingMinute)
	if err := m.settings.UpdateAutoSend(ctx, userID, cronSpec, st.pendingSource, tags); err != nil {
		return Reply{}, err
	}

	dispatcher := m.dispatcher
	if err := m.scheduler.Register(userID, cronSpec, func() {
		// the job re-reads settings and re-checks access on every fire;
		// nothing from this dialog is captured beyond the user id
		dispatcher.DeliverScheduled(context.Background(), userID)
	}); err != nil {
		return Reply{}, err
	}

	m.mu.Lock()
	delete(m.states, userID)
	m.mu.Unlock()

	m.logger.Info().
		Int64("user_id", userID).
		Str("cron", cronSpec).
		Str("source", st.pendingSource).
		Str("tags", tags).
		Msg("Auto-send configured")

	return Reply{Text: fmt.Sprintf(
		"✅ Готово! Буду присылать пост из %s по тегам \"%s\" каждый день в %02d:%02d",
		st.pendingSource, tags, st.pendingHour, st.pendingMinute,
	)}, nil
}

// ParseHHMM parses a strict HH:MM time with 00-23 hours and 00-59 minutes
func ParseHHMM(s string) (hour, minute int, err error) {
	match := timePattern.FindStringSubmatch(s)
	if match == nil {
		return 0, 0, booruerrors.ErrInvalidTime
	}

	hour, _ = strconv.Atoi(match[1])
	minute, _ = strconv.Atoi(match[2])
	if hour > 23 || minute > 59 {
		return 0, 0, booruerrors.ErrInvalidTime
	}
	return hour, minute, nil
}

// CronSpec renders a daily cron spec for the given time of day
func CronSpec(hour, minute int) string {
	return fmt.Sprintf("%02d %02d * * *", minute, hour)
}
