package models

import (
	"time"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleFaculty Role = "FACULTY"
	RoleAdmin   Role = "ADMIN"
)

// IsStaff reports whether the role may act in the faculty area.
func (r Role) IsStaff() bool {
	return r == RoleFaculty || r == RoleAdmin
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// User is the profile document of one identity.
type User struct {
	ID            string       `gorm:"primaryKey;size:64" json:"id"`
	Name          string       `gorm:"not null" json:"name"`
	Email         string       `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string       `json:"-"`                                  // bcrypt, empty for Google accounts
	Avatar        string       `json:"avatar"`
	Role          Role         `gorm:"size:20;default:'STUDENT';not null;index" json:"role"`
	TotalCredits  int          `gorm:"not null;default:0;index" json:"total_credits"`
	Skills        SkillMetrics `gorm:"embedded;embeddedPrefix:skill_" json:"skills"`
	Rank          int          `gorm:"not null;default:0" json:"rank"` // 展示用，由定时任务刷新，不作为排名依据
	EmailVerified bool         `gorm:"default:false" json:"email_verified"`
	VerifyCode    string       `gorm:"size:20" json:"-"`
	VerifySentAt  *time.Time   `json:"-"`
	VerifyTries   int          `gorm:"not null;default:0" json:"-"` // 当前验证码的错误次数
	GoogleID      string       `gorm:"index" json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// LeaderboardEntry is a read-time projection of a profile with its computed rank.
type LeaderboardEntry struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Avatar       string       `json:"avatar"`
	TotalCredits int          `json:"total_credits"`
	Skills       SkillMetrics `json:"skills"`
	Rank         int          `json:"rank"`
}
