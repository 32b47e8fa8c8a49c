package models

import (
	"time"
)

type RewardCategory string

const (
	RewardCategoryMerch    RewardCategory = "Merch"
	RewardCategoryAcademic RewardCategory = "Academic"
	RewardCategoryVoucher  RewardCategory = "Voucher"
)

// Reward is a store item. Redemption is display-only, nothing is reserved or spent.
type Reward struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Cost        int            `gorm:"not null" json:"cost"`
	Category    RewardCategory `gorm:"size:20;not null" json:"category"`
	Description string         `gorm:"type:text" json:"description"`
	Image       string         `gorm:"type:text" json:"image"`
	CreatedAt   time.Time      `json:"created_at"`

	Affordable *bool `gorm:"-" json:"affordable,omitempty"`
}
