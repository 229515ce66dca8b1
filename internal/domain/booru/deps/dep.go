// Package deps contains interface definitions for the booru domain dependencies
package deps

import (
	"context"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/entities"
)

// SettingsRepository defines interface for per-user settings data access
type SettingsRepository interface {
	// Get returns the settings row for a user, or defaults when no row exists.
	// Absence is not an error and does not write a row.
	Get(ctx context.Context, userID int64) (*entities.UserSettings, error)

	// Upsert creates or fully replaces the settings row
	Upsert(ctx context.Context, settings *entities.UserSettings) error

	// UpdateSource updates only the selected source column
	UpdateSource(ctx context.Context, userID int64, source string) error

	// UpdateSubscriber updates only the subscriber flag column
	UpdateSubscriber(ctx context.Context, userID int64, subscriber bool) error

	// UpdateAutoSend updates the auto-send columns in a single statement
	UpdateAutoSend(ctx context.Context, userID int64, timeSpec, source, tags string) error

	// ClearAutoSend resets the auto-send columns to null
	ClearAutoSend(ctx context.Context, userID int64) error

	// ListAutoSend returns all users with a configured auto-send schedule
	ListAutoSend(ctx context.Context) ([]entities.UserSettings, error)
}

// Scheduler defines interface for registering recurring auto-send jobs
type Scheduler interface {
	// Register schedules a recurring job for a user, replacing any
	// previously registered job for the same user
	Register(userID int64, cronSpec string, job func()) error

	// Unregister removes the user's job if one is registered
	Unregister(userID int64)
}

// TelegramSender defines interface for sending messages via Telegram.
// This interface is used to break the cyclic dependency between UseCase
// and the Telegram delivery layer.
type TelegramSender interface {
	// SendMessage sends a text message to user
	SendMessage(ctx context.Context, userID int64, text string) error

	// SendPhoto sends a single photo with a caption to user
	SendPhoto(ctx context.Context, userID int64, photoURL, caption string) error
}

// AutoSendDispatcher defines interface for firing one scheduled delivery.
// The conversation flow registers jobs against it without depending on
// the use case directly.
type AutoSendDispatcher interface {
	// DeliverScheduled performs one best-effort auto-send for a user
	DeliverScheduled(ctx context.Context, userID int64)
}
