package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session type constants
const (
	SessionTypeInitial    = "INITIAL"
	SessionTypeMediation  = "MEDIATION"
	SessionTypeSettlement = "SETTLEMENT"
	SessionTypeFollowUp   = "FOLLOW_UP"
	SessionTypeOther      = "OTHER"
)

// Attendee is a person present at a session and the role they attended in
type Attendee struct {
	PersonID string `json:"person_id"`
	Role     string `json:"role"`
}

// Agreement is a single point agreed during a session
type Agreement struct {
	Description        string  `json:"description"`
	ResponsiblePartyID *string `json:"responsible_party_id,omitempty"`
}

// MediationSession is a recorded meeting tied to a case
type MediationSession struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`

	CaseID string `gorm:"type:uuid;not null;index:idx_session_case_date,priority:1" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"-"`

	SessionType     string     `gorm:"not null;default:MEDIATION" json:"session_type"`
	SessionDate     time.Time  `gorm:"not null;index:idx_session_case_date,priority:2" json:"session_date"`
	SessionTime     *string    `gorm:"size:5" json:"session_time,omitempty"` // HH:MM
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Location        *string    `json:"location,omitempty"`
	NextSessionDate *time.Time `json:"next_session_date,omitempty"`

	Attendees  datatypes.JSONSlice[Attendee]    `json:"attendees"`
	Agreements datatypes.JSONSlice[Agreement]   `json:"agreements"`
	Documents  datatypes.JSONSlice[DocumentRef] `json:"documents"`
	Metadata   datatypes.JSONMap                `json:"metadata"`

	DiscussionSummary *string `gorm:"type:text" json:"discussion_summary,omitempty"`
	Notes             string  `gorm:"type:text;not null;default:''" json:"notes"`

	CreatedBy string `gorm:"type:uuid;not null" json:"created_by"`
}

// BeforeCreate hook to generate UUID and empty containers
func (s *MediationSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.SessionType == "" {
		s.SessionType = SessionTypeMediation
	}
	if s.Attendees == nil {
		s.Attendees = datatypes.JSONSlice[Attendee]{}
	}
	if s.Agreements == nil {
		s.Agreements = datatypes.JSONSlice[Agreement]{}
	}
	if s.Documents == nil {
		s.Documents = datatypes.JSONSlice[DocumentRef]{}
	}
	if s.Metadata == nil {
		s.Metadata = datatypes.JSONMap{}
	}
	return nil
}

// TableName specifies the table name for MediationSession model
func (MediationSession) TableName() string {
	return "mediation_sessions"
}

// IsValidSessionType checks if the session type is valid
func IsValidSessionType(sessionType string) bool {
	return contains([]string{
		SessionTypeInitial,
		SessionTypeMediation,
		SessionTypeSettlement,
		SessionTypeFollowUp,
		SessionTypeOther,
	}, sessionType)
}
