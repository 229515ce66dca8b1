package scheduler

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the cron scheduler for fx dependency injection
var Module = fx.Module("scheduler",
	fx.Provide(NewCronScheduler),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, s *CronScheduler) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
}
