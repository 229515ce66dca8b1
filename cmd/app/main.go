package main

import (
	"go.uber.org/fx"

	"github.com/yourusername/booru-search-bot/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
