package services

import (
	"context"
	"log"
	"strings"
	"time"

	"mediation_flow_go/models"
	"mediation_flow_go/repository"
)

// SettlementInput records how a case was resolved
type SettlementInput struct {
	Amount *float64 `json:"settlement_amount"`
	Terms  *string  `json:"settlement_terms"`
	Date   *string  `json:"settlement_date"`
}

const settlementBeforeFiling = "Settlement date cannot be before filing date"

// LifecycleController moves cases between statuses
type LifecycleController struct {
	store repository.Store
	now   Clock
}

// NewLifecycleController creates a controller over store
func NewLifecycleController(store repository.Store, now Clock) *LifecycleController {
	return &LifecycleController{store: store, now: now.orDefault()}
}

// UpdateCaseStatus sets the case status, annotates the notes log and records the
// transition. Any status may follow any other.
func (l *LifecycleController) UpdateCaseStatus(ctx context.Context, caseID, newStatus, notes, actorID string) (*models.Case, error) {
	newStatus = strings.TrimSpace(newStatus)
	var updated *models.Case

	err := l.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.Cases().FindByID(ctx, caseID)
		if err != nil {
			return err
		}
		if !models.IsValidCaseStatus(newStatus) {
			return NewValidationError("Invalid status: " + newStatus)
		}

		now := l.now()
		previous := c.Status
		fields := map[string]interface{}{"status": newStatus}
		if newStatus == models.CaseStatusSettled {
			settledAt := now
			if c.SettlementDate != nil {
				settledAt = *c.SettlementDate
			} else {
				fields["settlement_date"] = settledAt
			}
			if truncateDay(settledAt).Before(truncateDay(c.FilingDate)) {
				return NewValidationError(settlementBeforeFiling)
			}
			scheduleFollowUp(c, settledAt, fields)
		}
		if err := tx.Cases().Update(ctx, c.ID, fields); err != nil {
			return err
		}

		text := sanitizeText(notes)
		if err := tx.Cases().PrependNotes(ctx, c.ID, statusChangeAnnotation(newStatus, now, text)); err != nil {
			return err
		}
		if err := tx.Events().Append(ctx, &models.CaseEvent{
			CaseID:     c.ID,
			Kind:       models.CaseEventStatusChange,
			FromStatus: &previous,
			ToStatus:   &newStatus,
			Message:    text,
			ActorID:    actorID,
			OccurredAt: now,
		}); err != nil {
			return err
		}

		updated, err = tx.Cases().FindByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Case", caseID, "update case status")
	}

	log.Printf("[CASE] Case %s moved to %s by %s", updated.CaseNumber, newStatus, actorID)
	return updated, nil
}

// SettleCase closes a case as settled, recording amount and terms
func (l *LifecycleController) SettleCase(ctx context.Context, caseID string, input SettlementInput, actorID string) (*models.Case, error) {
	var updated *models.Case

	err := l.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.Cases().FindByID(ctx, caseID)
		if err != nil {
			return err
		}

		now := l.now()
		var errs validationErrors
		settledAt := now
		if parsed := parseOptionalDate(input.Date, "settlement date", &errs); parsed != nil {
			settledAt = *parsed
		}
		if truncateDay(settledAt).Before(truncateDay(c.FilingDate)) {
			errs.add("%s", settlementBeforeFiling)
		}
		if input.Amount != nil && *input.Amount < 0 {
			errs.add("Settlement amount cannot be negative")
		}
		if err := errs.err(); err != nil {
			return err
		}

		previous := c.Status
		fields := map[string]interface{}{
			"status":          models.CaseStatusSettled,
			"settlement_date": settledAt,
		}
		if input.Amount != nil {
			fields["settlement_amount"] = *input.Amount
		}
		terms := sanitizeOptional(input.Terms)
		if terms != nil {
			fields["settlement_terms"] = *terms
		}
		scheduleFollowUp(c, settledAt, fields)

		if err := tx.Cases().Update(ctx, c.ID, fields); err != nil {
			return err
		}

		annotation := settlementAnnotation(now, input.Amount, terms)
		if err := tx.Cases().PrependNotes(ctx, c.ID, annotation); err != nil {
			return err
		}
		settled := models.CaseStatusSettled
		if err := tx.Events().Append(ctx, &models.CaseEvent{
			CaseID:     c.ID,
			Kind:       models.CaseEventSettled,
			FromStatus: &previous,
			ToStatus:   &settled,
			Message:    annotation,
			ActorID:    actorID,
			OccurredAt: now,
		}); err != nil {
			return err
		}

		updated, err = tx.Cases().FindByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Case", caseID, "settle case")
	}

	log.Printf("[CASE] Case %s settled by %s", updated.CaseNumber, actorID)
	return updated, nil
}

// ListDueFollowUps returns settled cases whose follow-up falls on or before the
// given time and has not been notified yet
func (l *LifecycleController) ListDueFollowUps(ctx context.Context, before time.Time) ([]models.Case, error) {
	cases, err := l.store.Cases().ListFollowUpsDue(ctx, before)
	if err != nil {
		return nil, NewInternalError("list due follow-ups", err)
	}
	return cases, nil
}

// MarkFollowUpNotified stamps the case so the reminder is not sent twice
func (l *LifecycleController) MarkFollowUpNotified(ctx context.Context, caseID string) error {
	err := l.store.Cases().Update(ctx, caseID, map[string]interface{}{
		"follow_up_notified_at": l.now(),
	})
	return storeError(err, "Case", caseID, "mark follow-up notified")
}

// scheduleFollowUp sets the follow-up date when one is required and still unset
func scheduleFollowUp(c *models.Case, settledAt time.Time, fields map[string]interface{}) {
	if c.FollowUpRequired && c.FollowUpDate == nil {
		fields["follow_up_date"] = settledAt.AddDate(0, 0, models.FollowUpDelayDays)
	}
}
