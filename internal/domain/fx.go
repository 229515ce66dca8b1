// Package domain contains all domain modules
package domain

import (
	"go.uber.org/fx"

	"github.com/yourusername/booru-search-bot/internal/domain/booru"
)

// Module aggregates all domain modules for fx dependency injection
var Module = fx.Module("domain",
	booru.Module,
)
