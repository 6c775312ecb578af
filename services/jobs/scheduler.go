package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"mediation_flow_go/config"

	"github.com/robfig/cron/v3"
)

// StartScheduler registers the follow-up reminder on the configured schedule and starts
// the cron runner. The caller stops it on shutdown.
func StartScheduler(cfg *config.Config, reminder *FollowUpReminder) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.FollowUpTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid follow-up timezone %q: %w", cfg.FollowUpTimezone, err)
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.FollowUpCron, func() {
		log.Println("[CRON] Running follow-up reminders...")
		if _, err := reminder.SendFollowUpReminders(context.Background()); err != nil {
			log.Printf("[CRON] Follow-up reminders failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule follow-up reminders: %w", err)
	}

	c.Start()
	log.Printf("[CRON] Scheduler started (%s, %s)", cfg.FollowUpCron, cfg.FollowUpTimezone)
	return c, nil
}
