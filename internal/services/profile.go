package services

import (
	"context"
	"errors"
	"strings"

	"skillgrid/internal/apperr"
	"skillgrid/internal/models"
	"skillgrid/internal/utils"

	"gorm.io/gorm"
)

type ProfileService struct {
	db  *gorm.DB
	hub *ProfileHub
}

func NewProfileService(db *gorm.DB, hub *ProfileHub) *ProfileService {
	return &ProfileService{db: db, hub: hub}
}

// CreateUserProfile stores usr unless a profile with the same ID already exists.
// An existing profile is returned as stored and created is false.
func (s *ProfileService) CreateUserProfile(ctx context.Context, usr *models.User) (profile *models.User, created bool, err error) {
	if usr.ID == "" {
		return nil, false, apperr.Invalid("Profile id is required.", map[string]string{"id": "required"})
	}

	existing, err := s.Get(ctx, usr.ID)
	if err == nil {
		return existing, false, nil
	}
	if !apperr.Is(err, apperr.NotFound) {
		return nil, false, err
	}

	if usr.Role == "" {
		usr.Role = models.RoleStudent
	}
	if usr.Avatar == "" {
		usr.Avatar = utils.DefaultAvatar(usr.Name)
	}
	if err := s.db.WithContext(ctx).Create(usr).Error; err != nil {
		// 并发创建同一 ID 时，以已写入的记录为准
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, getErr := s.Get(ctx, usr.ID); getErr == nil {
				return existing, false, nil
			}
			return nil, false, apperr.Wrap(apperr.Conflict, err, "Email already in use.")
		}
		return nil, false, err
	}
	return usr, true, nil
}

func (s *ProfileService) Get(ctx context.Context, id string) (*models.User, error) {
	var usr models.User
	if err := s.db.WithContext(ctx).First(&usr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Profile not found.")
		}
		return nil, err
	}
	return &usr, nil
}

func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var usr models.User
	err := s.db.WithContext(ctx).First(&usr, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Profile not found.")
		}
		return nil, err
	}
	return &usr, nil
}

// ListStudents returns every student profile, alphabetically.
func (s *ProfileService) ListStudents(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleStudent).
		Order("name ASC, id ASC").
		Find(&users).Error
	return users, err
}

type ProfileUpdate struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// UpdateProfile changes the self-editable fields and publishes the result.
func (s *ProfileService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Invalid("Name cannot be empty.", map[string]string{"name": "required"})
		}
		updates["name"] = name
	}
	if in.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*in.Avatar)
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, apperr.New(apperr.NotFound, "Profile not found.")
		}
	}

	usr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(usr)
	return usr, nil
}

// CreditHistory lists the verification awards of a profile, newest first.
func (s *ProfileService) CreditHistory(ctx context.Context, id string) ([]models.PointLog, error) {
	var logs []models.PointLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", id).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	return logs, err
}

func (s *ProfileService) Notifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(utils.ClampLimit(limit, 50, 200)).
		Find(&list).Error
	return list, err
}

func (s *ProfileService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead flags one of the user's notifications as read.
func (s *ProfileService) MarkNotificationRead(ctx context.Context, userID string, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Notification not found.")
	}
	return nil
}

func (s *ProfileService) publish(usr *models.User) {
	if s.hub != nil && usr != nil {
		s.hub.Publish(*usr)
	}
}
