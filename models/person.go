package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Person roles
const (
	PersonRoleParty    = "party"
	PersonRoleMediator = "mediator"
	PersonRoleOfficer  = "officer"
	PersonRoleAdmin    = "admin"
)

// Person is a directory entry referenced by cases and sessions
type Person struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name  string  `gorm:"not null" json:"name"`
	Email *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Role  string  `gorm:"not null;default:party" json:"role"`
}

// BeforeCreate hook to generate UUID
func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// HasEmail checks if the person can be reached by email
func (p *Person) HasEmail() bool {
	return p.Email != nil && *p.Email != ""
}

// TableName specifies the table name for Person model
func (Person) TableName() string {
	return "persons"
}
