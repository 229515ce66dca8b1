// Package errors contains domain-specific errors for the booru domain
package errors

import (
	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

// Domain errors for booru operations
var (
	ErrEmptyTags      = pkgerrors.NewValidationError("tag string cannot be empty")
	ErrInvalidTime    = pkgerrors.NewValidationError("time must be in HH:MM format, e.g. 21:00")
	ErrNoActiveDialog = pkgerrors.NewValidationError("no configuration dialog in progress")
	ErrBadCronSpec    = pkgerrors.NewInternalError("stored schedule is not a valid cron spec")
	ErrSenderNotSet   = pkgerrors.NewInternalError("telegram sender is not set")
)
