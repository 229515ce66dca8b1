// Package access decides whether a user may query a given source
package access

import (
	"context"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/deps"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/entities"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/sources"
	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

// Allowed reports whether the given settings permit querying the source.
// Pure given current settings.
func Allowed(settings *entities.UserSettings, desc *sources.Descriptor) bool {
	if !desc.Restricted {
		return true
	}
	return settings.IsSubscriber
}

// Checker re-evaluates access against fresh settings at every call.
// Subscription state can change between checks, so results are never cached.
type Checker struct {
	settings deps.SettingsRepository
}

// NewChecker creates a new access checker
func NewChecker(settings deps.SettingsRepository) *Checker {
	return &Checker{settings: settings}
}

// CanAccess reports whether the user may currently query the source
func (c *Checker) CanAccess(ctx context.Context, userID int64, sourceKey string) (bool, error) {
	desc, err := sources.Get(sourceKey)
	if err != nil {
		return false, pkgerrors.NewUnknownSourceError(sourceKey)
	}

	settings, err := c.settings.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	return Allowed(settings, desc), nil
}
