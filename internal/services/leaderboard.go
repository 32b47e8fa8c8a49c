package services

import (
	"context"

	"skillgrid/internal/models"
	"skillgrid/internal/utils"

	"gorm.io/gorm"
)

const (
	DefaultLeaderboardLimit = 20
	MaxLeaderboardLimit     = 100
)

// 排名顺序：积分降序，同分时先注册者在前
const leaderboardOrder = "total_credits DESC, created_at ASC, id ASC"

type LeaderboardService struct {
	db *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// GetLeaderboard returns the top students with ranks computed at read time.
// The stored rank column is not consulted.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	limit = utils.ClampLimit(limit, DefaultLeaderboardLimit, MaxLeaderboardLimit)

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleStudent).
		Order(leaderboardOrder).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = models.LeaderboardEntry{
			ID:           u.ID,
			Name:         u.Name,
			Avatar:       u.Avatar,
			TotalCredits: u.TotalCredits,
			Skills:       u.Skills,
			Rank:         i + 1,
		}
	}
	return entries, nil
}

// RefreshRanks writes the current standing of every student into users.rank
// and reports how many rows changed.
func (s *LeaderboardService) RefreshRanks(ctx context.Context) (int, error) {
	var rows []struct {
		ID   string
		Rank int
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id, rank").
		Where("role = ?", models.RoleStudent).
		Order(leaderboardOrder).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	changed := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, r := range rows {
			if r.Rank == i+1 {
				continue
			}
			if err := tx.Model(&models.User{}).Where("id = ?", r.ID).UpdateColumn("rank", i+1).Error; err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	return changed, err
}
