package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseEventKind identifies what happened to a case
type CaseEventKind string

const (
	CaseEventStatusChange     CaseEventKind = "STATUS_CHANGE"
	CaseEventMediatorAssigned CaseEventKind = "MEDIATOR_ASSIGNED"
	CaseEventSettled          CaseEventKind = "CASE_SETTLED"
	CaseEventSessionRecorded  CaseEventKind = "SESSION_RECORDED"
	CaseEventSessionOutcome   CaseEventKind = "SESSION_OUTCOME"
	CaseEventDeleted          CaseEventKind = "CASE_DELETED"
)

// ErrCaseEventImmutable is returned when something tries to rewrite the event log
var ErrCaseEventImmutable = errors.New("case events are append-only")

// CaseEvent is one immutable entry in a case's event log
type CaseEvent struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID    string  `gorm:"type:uuid;not null;index:idx_case_event_case_time,priority:1" json:"case_id"`
	SessionID *string `gorm:"type:uuid;index" json:"session_id,omitempty"`

	Kind       CaseEventKind `gorm:"not null;index" json:"kind"`
	FromStatus *string       `json:"from_status,omitempty"`
	ToStatus   *string       `json:"to_status,omitempty"`
	Message    string        `gorm:"type:text" json:"message"`

	ActorID    string    `gorm:"type:uuid" json:"actor_id"`
	OccurredAt time.Time `gorm:"not null;index:idx_case_event_case_time,priority:2" json:"occurred_at"`
}

// BeforeCreate generates UUID
func (e *CaseEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate prevents modification of case events
func (e *CaseEvent) BeforeUpdate(tx *gorm.DB) error {
	return ErrCaseEventImmutable
}

// BeforeDelete prevents deletion of case events
func (e *CaseEvent) BeforeDelete(tx *gorm.DB) error {
	return ErrCaseEventImmutable
}

// TableName specifies the table name
func (CaseEvent) TableName() string {
	return "case_events"
}
