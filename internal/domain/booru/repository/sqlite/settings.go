// Package sqlite contains the gorm-backed settings repository
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/deps"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/entities"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/sources"
	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) deps.SettingsRepository {
	return &settingsRepository{db: db}
}

// Defaults returns the settings applied to a user with no persisted row
func Defaults(userID int64) *entities.UserSettings {
	return &entities.UserSettings{
		ID:     userID,
		Source: sources.DefaultKey,
	}
}

// Get returns the settings row for a user. A missing row yields defaults
// without writing anything.
func (r *settingsRepository) Get(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	var settings entities.UserSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Defaults(userID), nil
		}
		return nil, storageErr("get settings", err)
	}
	return &settings, nil
}

// Upsert creates or fully replaces the settings row. Callers merge
// unspecified fields from the current record before calling; concurrent
// upserts for the same user are last-write-wins.
func (r *settingsRepository) Upsert(ctx context.Context, settings *entities.UserSettings) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(settings).Error
	if err != nil {
		return storageErr("upsert settings", err)
	}
	return nil
}

// UpdateSource updates only the source column in a single statement
func (r *settingsRepository) UpdateSource(ctx context.Context, userID int64, source string) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"source": source})
}

// UpdateSubscriber updates only the subscriber flag in a single statement
func (r *settingsRepository) UpdateSubscriber(ctx context.Context, userID int64, subscriber bool) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{"is_subscriber": subscriber})
}

// UpdateAutoSend updates the auto-send columns in a single statement
func (r *settingsRepository) UpdateAutoSend(ctx context.Context, userID int64, timeSpec, source, tags string) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"auto_send_time":   timeSpec,
		"auto_send_source": source,
		"auto_send_tags":   tags,
	})
}

// ClearAutoSend resets the auto-send columns to null
func (r *settingsRepository) ClearAutoSend(ctx context.Context, userID int64) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"auto_send_time":   nil,
		"auto_send_source": nil,
		"auto_send_tags":   nil,
	})
}

// ListAutoSend returns all users with a configured schedule
func (r *settingsRepository) ListAutoSend(ctx context.Context) ([]entities.UserSettings, error) {
	var rows []entities.UserSettings
	err := r.db.WithContext(ctx).
		Where("auto_send_time IS NOT NULL AND auto_send_source IS NOT NULL AND auto_send_tags IS NOT NULL").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("list auto-send users", err)
	}
	return rows, nil
}

// updateColumns applies a partial update as one statement, creating the
// row with defaults first when the user has never been persisted. The
// single-statement update is what keeps concurrent dialogs for the same
// user from clobbering each other's unrelated columns.
func (r *settingsRepository) updateColumns(ctx context.Context, userID int64, columns map[string]interface{}) error {
	tx := r.db.WithContext(ctx).
		Model(&entities.UserSettings{}).
		Where("id = ?", userID).
		Updates(columns)
	if tx.Error != nil {
		return storageErr("update settings", tx.Error)
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	row := Defaults(userID)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return storageErr("create settings row", err)
	}

	err := r.db.WithContext(ctx).
		Model(&entities.UserSettings{}).
		Where("id = ?", userID).
		Updates(columns).Error
	if err != nil {
		return storageErr("update settings", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return pkgerrors.NewStorageError(fmt.Sprintf("%s: %v", op, err))
}
