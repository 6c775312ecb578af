package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"mediation_flow_go/config"
	"mediation_flow_go/models"
	"mediation_flow_go/repository"
	"mediation_flow_go/services"
)

// FollowUpReminder tells mediators when a settled case reaches its follow-up date
type FollowUpReminder struct {
	lifecycle     *services.LifecycleController
	notifications *services.NotificationService
	people        repository.PersonDirectory
	cfg           *config.Config
	now           services.Clock
}

// NewFollowUpReminder wires the reminder job to the case services
func NewFollowUpReminder(svc *services.Services, people repository.PersonDirectory, cfg *config.Config, now services.Clock) *FollowUpReminder {
	if now == nil {
		now = services.SystemClock
	}
	return &FollowUpReminder{
		lifecycle:     svc.Lifecycle,
		notifications: svc.Notifications,
		people:        people,
		cfg:           cfg,
		now:           now,
	}
}

// SendFollowUpReminders notifies the mediator of every case whose follow-up falls within
// the lookahead window and stamps it so it is reminded only once. It returns how many
// cases were handled.
func (r *FollowUpReminder) SendFollowUpReminders(ctx context.Context) (int, error) {
	log.Println("[JOB] Starting follow-up reminder job...")

	before := r.now().AddDate(0, 0, r.cfg.FollowUpLookaheadDays)
	cases, err := r.lifecycle.ListDueFollowUps(ctx, before)
	if err != nil {
		return 0, err
	}

	log.Printf("[JOB] Found %d follow-ups to remind", len(cases))

	sent := 0
	for _, c := range cases {
		if err := r.remind(ctx, c); err != nil {
			log.Printf("[JOB] Failed to remind follow-up for case %s: %v", c.CaseNumber, err)
			continue
		}
		sent++
	}

	log.Printf("[JOB] Follow-up reminder job completed (%d sent)", sent)
	return sent, nil
}

func (r *FollowUpReminder) remind(ctx context.Context, c models.Case) error {
	if c.MediatorID == nil {
		return errors.New("case has no mediator")
	}

	mediator, err := r.people.Lookup(ctx, *c.MediatorID)
	if err != nil {
		return fmt.Errorf("failed to look up mediator %s: %w", *c.MediatorID, err)
	}

	followUpDate := c.FollowUpDate.Format("January 2, 2006")

	caseID := c.ID
	if err := r.notifications.CreateNotification(ctx, &models.Notification{
		RecipientID: mediator.ID,
		CaseID:      &caseID,
		Type:        models.NotificationTypeFollowUpDue,
		Title:       "Follow-up due for case " + c.CaseNumber,
		Message:     fmt.Sprintf("The settlement of %s needs a follow-up on %s.", c.Title, followUpDate),
	}); err != nil {
		return err
	}

	// Stamp before emailing: each reminder email is attempted at most once
	if err := r.lifecycle.MarkFollowUpNotified(ctx, c.ID); err != nil {
		return err
	}

	if mediator.HasEmail() {
		if err := r.sendReminderEmail(mediator, c, followUpDate); err != nil {
			log.Printf("[JOB] Failed to email follow-up reminder for case %s: %v", c.CaseNumber, err)
		}
	}

	log.Printf("[JOB] Sent follow-up reminder for case %s to %s", c.CaseNumber, mediator.ID)
	return nil
}

func (r *FollowUpReminder) sendReminderEmail(mediator *models.Person, c models.Case, followUpDate string) error {
	email, err := services.BuildFollowUpReminderEmail(*mediator.Email, services.FollowUpReminderEmailData{
		MediatorName: mediator.Name,
		CaseNumber:   c.CaseNumber,
		CaseTitle:    c.Title,
		FollowUpDate: followUpDate,
	})
	if err != nil {
		return err
	}
	return services.SendEmail(r.cfg, email)
}
