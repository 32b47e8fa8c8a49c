package models

import (
	"time"
)

type EventCategory string

const (
	CategoryWorkshop     EventCategory = "Workshop"
	CategorySeminar      EventCategory = "Seminar"
	CategoryHackathon    EventCategory = "Hackathon"
	CategoryClubActivity EventCategory = "Club Activity"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "Upcoming"
	EventStatusCompleted EventStatus = "Completed"
	EventStatusVerified  EventStatus = "Verified"
)

// Event is a globally visible catalog entry.
type Event struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Date        string        `gorm:"size:10;not null;index" json:"date"` // YYYY-MM-DD
	Category    EventCategory `gorm:"size:32;not null" json:"category"`
	Credits     int           `gorm:"not null" json:"credits"`
	Status      EventStatus   `gorm:"size:20;default:'Upcoming'" json:"status"`
	Image       string        `gorm:"type:text" json:"image"`
	Description string        `gorm:"type:text" json:"description"`
	SkillSplit  SkillMetrics  `gorm:"embedded;embeddedPrefix:split_" json:"skill_split"`
	CreatedBy   string        `gorm:"size:64" json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`

	// 非数据库字段，渲染后的描述
	DescriptionHTML string `gorm:"-" json:"description_html,omitempty"`
	Excerpt         string `gorm:"-" json:"excerpt,omitempty"`
}
