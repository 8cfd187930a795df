package jobs

import (
	"coachvision/analysis-app/internal/logger"
	"coachvision/analysis-app/internal/service"
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// StartNotificationRetry schedules the periodic sweep that re-persists
// notification records whose initial write failed. Returns the cron
// scheduler so the caller can stop it on shutdown.
func StartNotificationRetry(notifications service.NotificationService, interval time.Duration) *cron.Cron {
	if interval <= 0 {
		interval = time.Minute
	}

	c := cron.New()
	spec := "@every " + interval.String()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		notifications.RetryFailed(ctx)
	}); err != nil {
		logger.Error("failed to schedule notification retry job", "spec", spec, "error", err)
		return c
	}

	c.Start()
	logger.Info("notification retry job scheduled", "interval", interval.String())
	return c
}
