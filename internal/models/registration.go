package models

import (
	"time"
)

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "Pending"
	RegistrationVerified RegistrationStatus = "Verified"
)

// Registration is a student's claim of participation in one event.
// Event fields are copied at registration time; there is no foreign key to events,
// so deleting a catalog entry leaves its registrations in place.
type Registration struct {
	UserID      string             `gorm:"primaryKey;size:64" json:"user_id"`
	EventID     string             `gorm:"primaryKey;size:36" json:"event_id"`
	Title       string             `gorm:"not null" json:"title"`
	Date        string             `gorm:"size:10;index" json:"date"`
	Category    EventCategory      `gorm:"size:32" json:"category"`
	Credits     int                `gorm:"not null" json:"credits"`
	Description string             `gorm:"type:text" json:"description"`
	Status      RegistrationStatus `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	SkillKey    string             `gorm:"size:20" json:"skill_key,omitempty"`
	VerifiedBy  string             `gorm:"size:64" json:"verified_by,omitempty"`
	VerifiedAt  *time.Time         `json:"verified_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`

	// 仅审核列表填充
	StudentName string `gorm:"->;-:migration" json:"student_name,omitempty"`
}
