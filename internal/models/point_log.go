package models

import (
	"time"
)

// PointLog records one credit award. It is written only by verification.
type PointLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:64;not null;index" json:"user_id"`
	EventID    string    `gorm:"size:36;index" json:"event_id"`
	Amount     int       `gorm:"not null" json:"amount"`
	SkillKey   string    `gorm:"size:20" json:"skill_key"`
	SkillBonus int       `gorm:"not null;default:0" json:"skill_bonus"`
	Action     string    `gorm:"size:100;not null" json:"action"` // 动作描述
	ActorID    string    `gorm:"size:64" json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}
