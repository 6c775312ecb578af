package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusNew        = "NEW"
	CaseStatusAssigned   = "ASSIGNED"
	CaseStatusInProgress = "IN_PROGRESS"
	CaseStatusMediation  = "MEDIATION"
	CaseStatusSettled    = "SETTLED"
	CaseStatusDismissed  = "DISMISSED"
	CaseStatusEscalated  = "ESCALATED"
)

// Case type constants
const (
	CaseTypeFamilyDispute    = "FAMILY_DISPUTE"
	CaseTypeFinancialDispute = "FINANCIAL_DISPUTE"
	CaseTypeInheritance      = "INHERITANCE"
	CaseTypeMarital          = "MARITAL"
	CaseTypeBusiness         = "BUSINESS"
	CaseTypeOther            = "OTHER"
)

// Priority constants
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Confidentiality level constants
const (
	ConfidentialityLow       = "LOW"
	ConfidentialityMedium    = "MEDIUM"
	ConfidentialityHigh      = "HIGH"
	ConfidentialityTopSecret = "TOP_SECRET"
)

const (
	// MediatorCaseCapacity is the maximum number of active cases a mediator may hold
	MediatorCaseCapacity = 10
	// FollowUpDelayDays is the gap between settlement and the follow-up date
	FollowUpDelayDays = 30
)

// CaseStatusOrder lists statuses in reporting order
var CaseStatusOrder = []string{
	CaseStatusNew,
	CaseStatusAssigned,
	CaseStatusInProgress,
	CaseStatusMediation,
	CaseStatusSettled,
	CaseStatusDismissed,
	CaseStatusEscalated,
}

// ActiveCaseStatuses count against a mediator's capacity
var ActiveCaseStatuses = []string{
	CaseStatusNew,
	CaseStatusAssigned,
	CaseStatusInProgress,
	CaseStatusMediation,
}

// DocumentRef points to a document held by the external document store
type DocumentRef struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	UploadedBy string `json:"uploaded_by,omitempty"`
}

// Case represents a dispute-resolution matter
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`

	// Case identification
	CaseNumber      string  `gorm:"not null;uniqueIndex" json:"case_number"`
	Title           string  `gorm:"not null" json:"title"`
	CaseType        string  `gorm:"not null;index" json:"case_type"`
	Description     *string `gorm:"type:text" json:"description,omitempty"`
	Priority        string  `gorm:"not null;default:MEDIUM" json:"priority"`
	Confidentiality string  `gorm:"not null;default:MEDIUM" json:"confidentiality"`

	// Status and lifecycle
	Status     string    `gorm:"not null;default:NEW;index:idx_case_mediator_status,priority:2" json:"status"`
	FilingDate time.Time `gorm:"not null" json:"filing_date"`

	// Parties (references to external persons)
	PlaintiffID *string `gorm:"type:uuid;index" json:"plaintiff_id,omitempty"`
	DefendantID *string `gorm:"type:uuid;index" json:"defendant_id,omitempty"`
	MediatorID  *string `gorm:"type:uuid;index:idx_case_mediator_status,priority:1" json:"mediator_id,omitempty"`

	// Settlement
	SettlementDate   *time.Time `json:"settlement_date,omitempty"`
	SettlementAmount *float64   `json:"settlement_amount,omitempty"`
	SettlementTerms  *string    `gorm:"type:text" json:"settlement_terms,omitempty"`

	// Follow-up
	FollowUpRequired   bool       `gorm:"not null;default:false" json:"follow_up_required"`
	FollowUpDate       *time.Time `gorm:"index" json:"follow_up_date,omitempty"`
	FollowUpNotifiedAt *time.Time `json:"follow_up_notified_at,omitempty"`

	// Annotated audit log, newest first
	Notes string `gorm:"type:text;not null;default:''" json:"notes"`

	Documents datatypes.JSONSlice[DocumentRef] `json:"documents"`
	Metadata  datatypes.JSONMap                `json:"metadata"`

	CreatedBy string `gorm:"type:uuid" json:"created_by"`
}

// BeforeCreate hook to generate UUID and apply defaults
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = CaseStatusNew
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.Confidentiality == "" {
		c.Confidentiality = ConfidentialityMedium
	}
	if c.Documents == nil {
		c.Documents = datatypes.JSONSlice[DocumentRef]{}
	}
	if c.Metadata == nil {
		c.Metadata = datatypes.JSONMap{}
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	return contains(CaseStatusOrder, status)
}

// IsActiveCaseStatus checks if the status is one of the active statuses
func IsActiveCaseStatus(status string) bool {
	return contains(ActiveCaseStatuses, status)
}

// IsValidCaseType checks if the case type is valid
func IsValidCaseType(caseType string) bool {
	return contains([]string{
		CaseTypeFamilyDispute,
		CaseTypeFinancialDispute,
		CaseTypeInheritance,
		CaseTypeMarital,
		CaseTypeBusiness,
		CaseTypeOther,
	}, caseType)
}

// IsValidPriority checks if the priority is valid
func IsValidPriority(priority string) bool {
	return contains([]string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}, priority)
}

// IsValidConfidentiality checks if the confidentiality level is valid
func IsValidConfidentiality(level string) bool {
	return contains([]string{
		ConfidentialityLow,
		ConfidentialityMedium,
		ConfidentialityHigh,
		ConfidentialityTopSecret,
	}, level)
}

// StatusRank returns the reporting position of a status; unknown statuses sort last
func StatusRank(status string) int {
	for i, s := range CaseStatusOrder {
		if s == status {
			return i
		}
	}
	return len(CaseStatusOrder)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
