// Package repository holds the persistence ports used by the services and
// their gorm-backed implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"mediation_flow_go/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is soft-deleted
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// StatusCount is the number of cases holding a status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CaseRepository persists cases
type CaseRepository interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, id string) (*models.Case, error)
	// Update merges fields into the case row
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	// PrependNotes puts line on top of the notes log in a single statement
	PrependNotes(ctx context.Context, id, line string) error
	// LatestCaseNumber returns the highest case number starting with prefix, including
	// soft-deleted cases, or "" when there is none
	LatestCaseNumber(ctx context.Context, prefix string) (string, error)
	// AssignMediatorWithinCapacity assigns the mediator only if they hold fewer than
	// capacity active cases other than this one; it reports whether the row changed
	AssignMediatorWithinCapacity(ctx context.Context, caseID, mediatorID string, capacity int) (bool, error)
	CountActiveByMediator(ctx context.Context, mediatorID string) (int64, error)
	CountByStatusForMediator(ctx context.Context, mediatorID string) ([]StatusCount, error)
	ListByMediator(ctx context.Context, mediatorID string) ([]models.Case, error)
	// ListByParties returns cases where any of the ids is plaintiff or defendant
	ListByParties(ctx context.Context, partyIDs []string, excludeCaseID string) ([]models.Case, error)
	ListFollowUpsDue(ctx context.Context, before time.Time) ([]models.Case, error)
	Search(ctx context.Context, filters []Filter, page Page) (*PageResult[models.Case], error)
	SoftDelete(ctx context.Context, id, actorID string) error
}

// SessionRepository persists mediation sessions
type SessionRepository interface {
	Create(ctx context.Context, s *models.MediationSession) error
	FindByID(ctx context.Context, id string) (*models.MediationSession, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	PrependNotes(ctx context.Context, id, line string) error
	// ListByCase orders by session date then time; an empty sessionType lists all
	ListByCase(ctx context.Context, caseID, sessionType string) ([]models.MediationSession, error)
	SoftDelete(ctx context.Context, id, actorID string) error
}

// CaseEventRepository appends to and reads the per-case event log
type CaseEventRepository interface {
	Append(ctx context.Context, e *models.CaseEvent) error
	// ListByCase returns events oldest first, optionally restricted to kinds
	ListByCase(ctx context.Context, caseID string, kinds ...models.CaseEventKind) ([]models.CaseEvent, error)
}

// PersonDirectory resolves person references
type PersonDirectory interface {
	Lookup(ctx context.Context, id string) (*models.Person, error)
}

// NotificationRepository persists in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error)
	// MarkRead stamps the recipient's notification; ErrNotFound when it is not theirs
	MarkRead(ctx context.Context, id, recipientID string, at time.Time) error
}

// Store groups the repositories and runs units of work atomically
type Store interface {
	Cases() CaseRepository
	Sessions() SessionRepository
	Events() CaseEventRepository
	Persons() PersonDirectory
	Notifications() NotificationRepository
	// WithinTx runs fn against a transactional Store; an error rolls everything back
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
