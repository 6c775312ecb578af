package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"mediation_flow_go/models"
	"mediation_flow_go/repository"

	"gorm.io/datatypes"
)

// CreateSessionInput is the payload for recording a session. Dates are YYYY-MM-DD strings.
type CreateSessionInput struct {
	CaseID            string                 `json:"case_id"`
	SessionType       string                 `json:"session_type"`
	SessionDate       string                 `json:"session_date"`
	SessionTime       *string                `json:"session_time"`
	DurationMinutes   *int                   `json:"duration_minutes"`
	Location          *string                `json:"location"`
	Attendees         []models.Attendee      `json:"attendees"`
	Agreements        []models.Agreement     `json:"agreements"`
	NextSessionDate   *string                `json:"next_session_date"`
	DiscussionSummary *string                `json:"discussion_summary"`
	Notes             *string                `json:"notes"`
	Documents         []models.DocumentRef   `json:"documents"`
	Metadata          map[string]interface{} `json:"metadata"`
}

// SessionOutcomeInput updates what a session produced. A nil Agreements leaves the
// agreements untouched; a non-nil one replaces them entirely.
type SessionOutcomeInput struct {
	Agreements      *[]models.Agreement `json:"agreements"`
	NextSessionDate *string             `json:"next_session_date"`
	Notes           *string             `json:"notes"`
}

const nextSessionBeforeCurrent = "Next session date cannot be before current session date"

// SessionLedger records mediation sessions against cases
type SessionLedger struct {
	store repository.Store
	now   Clock
}

// NewSessionLedger creates a ledger over store
func NewSessionLedger(store repository.Store, now Clock) *SessionLedger {
	return &SessionLedger{store: store, now: now.orDefault()}
}

// CreateSession records a session for a live case. Validation problems are reported
// together; the case and attendee references are checked afterwards.
func (l *SessionLedger) CreateSession(ctx context.Context, input CreateSessionInput, actorID string) (*models.MediationSession, error) {
	session, err := buildSession(input)
	if err != nil {
		return nil, err
	}
	session.CreatedBy = actorID

	err = l.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Cases().FindByID(ctx, session.CaseID); err != nil {
			return storeError(err, "Case", session.CaseID, "load case")
		}
		for _, attendee := range session.Attendees {
			if _, err := tx.Persons().Lookup(ctx, attendee.PersonID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return NewReferentialIntegrityError("Attendee", attendee.PersonID)
				}
				return err
			}
		}

		if err := tx.Sessions().Create(ctx, session); err != nil {
			return err
		}
		sessionID := session.ID
		return tx.Events().Append(ctx, &models.CaseEvent{
			CaseID:     session.CaseID,
			SessionID:  &sessionID,
			Kind:       models.CaseEventSessionRecorded,
			Message:    session.SessionType + " session on " + session.SessionDate.Format(dateLayout),
			ActorID:    actorID,
			OccurredAt: l.now(),
		})
	})
	if err != nil {
		return nil, storeError(err, "Session", session.ID, "create session")
	}

	log.Printf("[SESSION] Recorded %s session %s for case %s", session.SessionType, session.ID, session.CaseID)
	return session, nil
}

func buildSession(input CreateSessionInput) (*models.MediationSession, error) {
	var errs validationErrors

	caseID := strings.TrimSpace(input.CaseID)
	if caseID == "" {
		errs.add("Case ID is required")
	}

	sessionType := strings.TrimSpace(input.SessionType)
	if sessionType == "" {
		sessionType = models.SessionTypeMediation
	} else if !models.IsValidSessionType(sessionType) {
		errs.add("Invalid session type: %s", sessionType)
	}

	var session models.MediationSession
	sessionDateSet := false
	if strings.TrimSpace(input.SessionDate) == "" {
		errs.add("Session date is required")
	} else if parsed, err := ParseDate(input.SessionDate); err != nil {
		errs.add("Invalid session date (expected YYYY-MM-DD)")
	} else {
		session.SessionDate = parsed
		sessionDateSet = true
	}

	if input.SessionTime != nil && *input.SessionTime != "" && !validSessionTime(*input.SessionTime) {
		errs.add("Invalid session time (expected HH:MM)")
	}
	if input.DurationMinutes != nil && *input.DurationMinutes <= 0 {
		errs.add("Duration must be a positive number of minutes")
	}

	for _, attendee := range input.Attendees {
		if strings.TrimSpace(attendee.PersonID) == "" {
			errs.add("Attendee person_id is required")
			break
		}
	}
	agreements, agreementErr := cleanAgreements(input.Agreements)
	if agreementErr != "" {
		errs.add("%s", agreementErr)
	}

	next := parseOptionalDate(input.NextSessionDate, "next session date", &errs)
	if next != nil && sessionDateSet && next.Before(session.SessionDate) {
		errs.add("%s", nextSessionBeforeCurrent)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	session.CaseID = caseID
	session.SessionType = sessionType
	if input.SessionTime != nil && *input.SessionTime != "" {
		session.SessionTime = input.SessionTime
	}
	session.DurationMinutes = input.DurationMinutes
	session.Location = sanitizeOptional(input.Location)
	session.NextSessionDate = next
	session.DiscussionSummary = sanitizeOptional(input.DiscussionSummary)
	if input.Notes != nil {
		session.Notes = sanitizeText(*input.Notes)
	}

	for _, attendee := range input.Attendees {
		session.Attendees = append(session.Attendees, models.Attendee{
			PersonID: strings.TrimSpace(attendee.PersonID),
			Role:     sanitizeText(attendee.Role),
		})
	}
	session.Agreements = agreements
	session.Documents = input.Documents
	session.Metadata = input.Metadata

	return &session, nil
}

// cleanAgreements sanitizes descriptions, returning a message when one is blank
func cleanAgreements(in []models.Agreement) ([]models.Agreement, string) {
	out := make([]models.Agreement, 0, len(in))
	for _, a := range in {
		description := sanitizeText(a.Description)
		if description == "" {
			return nil, "Agreement description is required"
		}
		out = append(out, models.Agreement{
			Description:        description,
			ResponsiblePartyID: normalizeID(a.ResponsiblePartyID),
		})
	}
	return out, ""
}

// UpdateSessionOutcome replaces agreements, sets the next session date and annotates notes
func (l *SessionLedger) UpdateSessionOutcome(ctx context.Context, sessionID string, input SessionOutcomeInput, actorID string) (*models.MediationSession, error) {
	var updated *models.MediationSession

	err := l.store.WithinTx(ctx, func(tx repository.Store) error {
		session, err := tx.Sessions().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}

		var errs validationErrors
		fields := map[string]interface{}{}
		if input.Agreements != nil {
			agreements, msg := cleanAgreements(*input.Agreements)
			if msg != "" {
				errs.add("%s", msg)
			}
			fields["agreements"] = datatypes.JSONSlice[models.Agreement](agreements)
		}
		if next := parseOptionalDate(input.NextSessionDate, "next session date", &errs); next != nil {
			if next.Before(session.SessionDate) {
				errs.add("%s", nextSessionBeforeCurrent)
			}
			fields["next_session_date"] = *next
		}
		if err := errs.err(); err != nil {
			return err
		}

		if len(fields) > 0 {
			if err := tx.Sessions().Update(ctx, session.ID, fields); err != nil {
				return err
			}
		}

		now := l.now()
		text := ""
		if input.Notes != nil {
			text = sanitizeText(*input.Notes)
		}
		if text != "" {
			if err := tx.Sessions().PrependNotes(ctx, session.ID, sessionOutcomeAnnotation(now, text)); err != nil {
				return err
			}
		}

		sessionRef := session.ID
		if err := tx.Events().Append(ctx, &models.CaseEvent{
			CaseID:     session.CaseID,
			SessionID:  &sessionRef,
			Kind:       models.CaseEventSessionOutcome,
			Message:    text,
			ActorID:    actorID,
			OccurredAt: now,
		}); err != nil {
			return err
		}

		updated, err = tx.Sessions().FindByID(ctx, session.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Session", sessionID, "update session outcome")
	}

	log.Printf("[SESSION] Outcome recorded for session %s by %s", sessionID, actorID)
	return updated, nil
}

// GetSession returns a live session
func (l *SessionLedger) GetSession(ctx context.Context, id string) (*models.MediationSession, error) {
	session, err := l.store.Sessions().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Session", id, "load session")
	}
	return session, nil
}

// GetCaseSessions lists a case's sessions in date and time order, optionally by type
func (l *SessionLedger) GetCaseSessions(ctx context.Context, caseID, sessionType string) ([]models.MediationSession, error) {
	if sessionType != "" && !models.IsValidSessionType(sessionType) {
		return nil, NewValidationError("Invalid session type: " + sessionType)
	}
	if _, err := l.store.Cases().FindByID(ctx, caseID); err != nil {
		return nil, storeError(err, "Case", caseID, "load case")
	}

	sessions, err := l.store.Sessions().ListByCase(ctx, caseID, sessionType)
	if err != nil {
		return nil, NewInternalError("list sessions", err)
	}
	return sessions, nil
}

// SoftDeleteSession hides a session from every read path
func (l *SessionLedger) SoftDeleteSession(ctx context.Context, id, actorID string) error {
	if err := l.store.Sessions().SoftDelete(ctx, id, actorID); err != nil {
		return storeError(err, "Session", id, "delete session")
	}
	log.Printf("[SESSION] Soft-deleted session %s by %s", id, actorID)
	return nil
}
