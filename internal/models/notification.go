package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeVerified NotificationType = "verified"
	NotificationTypeRejected NotificationType = "rejected"
	NotificationTypeSystem   NotificationType = "system"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    string           `gorm:"size:64;not null;index" json:"user_id"` // Receiver
	ActorID   string           `gorm:"size:64" json:"actor_id"`               // Sender
	EventID   string           `gorm:"size:36" json:"event_id"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Reason    string           `gorm:"type:text" json:"reason"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
