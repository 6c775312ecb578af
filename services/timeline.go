package services

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"mediation_flow_go/models"
	"mediation_flow_go/repository"
)

// TimelineEntryType classifies a timeline entry
type TimelineEntryType string

const (
	TimelineCaseFiled    TimelineEntryType = "CASE_FILED"
	TimelineStatusChange TimelineEntryType = "STATUS_CHANGE"
	TimelineSession      TimelineEntryType = "SESSION"
	TimelineSettled      TimelineEntryType = "SETTLED"
)

// summaryLimit is the number of characters of a discussion summary shown on the timeline
const summaryLimit = 100

// TimelineEntry is one dated point in a case's history
type TimelineEntry struct {
	Type             TimelineEntryType `json:"type"`
	Date             time.Time         `json:"date"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	Status           string            `json:"status,omitempty"`
	SessionID        string            `json:"session_id,omitempty"`
	SessionType      string            `json:"session_type,omitempty"`
	SettlementAmount *float64          `json:"settlement_amount,omitempty"`
	SettlementTerms  *string           `json:"settlement_terms,omitempty"`
	ActorID          string            `json:"actor_id,omitempty"`
}

// TimelineReconstructor assembles a case history from the case, its sessions and its events
type TimelineReconstructor struct {
	store repository.Store
}

// NewTimelineReconstructor creates a reconstructor over store
func NewTimelineReconstructor(store repository.Store) *TimelineReconstructor {
	return &TimelineReconstructor{store: store}
}

// GetCaseTimeline returns the case history sorted oldest first
func (t *TimelineReconstructor) GetCaseTimeline(ctx context.Context, caseID string) ([]TimelineEntry, error) {
	var entries []TimelineEntry

	// One transaction gives the three reads a consistent snapshot
	err := t.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.Cases().FindByID(ctx, caseID)
		if err != nil {
			return err
		}
		events, err := tx.Events().ListByCase(ctx, caseID, models.CaseEventStatusChange)
		if err != nil {
			return err
		}
		sessions, err := tx.Sessions().ListByCase(ctx, caseID, "")
		if err != nil {
			return err
		}
		entries = buildTimeline(c, events, sessions)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "Case", caseID, "build case timeline")
	}
	return entries, nil
}

func buildTimeline(c *models.Case, statusEvents []models.CaseEvent, sessions []models.MediationSession) []TimelineEntry {
	entries := []TimelineEntry{{
		Type:        TimelineCaseFiled,
		Date:        c.FilingDate,
		Title:       "Case filed",
		Description: c.Title,
		Status:      models.CaseStatusNew,
		ActorID:     c.CreatedBy,
	}}

	if len(statusEvents) > 0 {
		for _, e := range statusEvents {
			status := ""
			if e.ToStatus != nil {
				status = *e.ToStatus
			}
			entries = append(entries, TimelineEntry{
				Type:        TimelineStatusChange,
				Date:        e.OccurredAt,
				Title:       "Status changed to " + status,
				Description: e.Message,
				Status:      status,
				ActorID:     e.ActorID,
			})
		}
	} else {
		// Cases migrated without an event log still carry their annotations
		for _, a := range parseStatusAnnotations(c.Notes) {
			entries = append(entries, TimelineEntry{
				Type:        TimelineStatusChange,
				Date:        a.At,
				Title:       "Status changed to " + a.Status,
				Description: a.Text,
				Status:      a.Status,
			})
		}
	}

	for _, s := range sessions {
		entry := TimelineEntry{
			Type:        TimelineSession,
			Date:        s.SessionDate,
			Title:       s.SessionType + " session",
			SessionID:   s.ID,
			SessionType: s.SessionType,
			ActorID:     s.CreatedBy,
		}
		if s.DiscussionSummary != nil {
			entry.Description = truncateSummary(*s.DiscussionSummary)
		}
		entries = append(entries, entry)
	}

	if c.SettlementDate != nil {
		entries = append(entries, TimelineEntry{
			Type:             TimelineSettled,
			Date:             *c.SettlementDate,
			Title:            "Case settled",
			Status:           models.CaseStatusSettled,
			SettlementAmount: c.SettlementAmount,
			SettlementTerms:  c.SettlementTerms,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries
}

// truncateSummary cuts s to summaryLimit characters, marking the cut with an ellipsis
func truncateSummary(s string) string {
	if utf8.RuneCountInString(s) <= summaryLimit {
		return s
	}
	return string([]rune(s)[:summaryLimit]) + "..."
}

// GetCaseEvents returns the raw event log of a live case, oldest first
func (t *TimelineReconstructor) GetCaseEvents(ctx context.Context, caseID string) ([]models.CaseEvent, error) {
	if _, err := t.store.Cases().FindByID(ctx, caseID); err != nil {
		return nil, storeError(err, "Case", caseID, "load case")
	}
	events, err := t.store.Events().ListByCase(ctx, caseID)
	if err != nil {
		return nil, NewInternalError("list case events", err)
	}
	return events, nil
}
