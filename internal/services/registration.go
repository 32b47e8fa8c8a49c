package services

import (
	"context"
	"errors"

	"skillgrid/internal/apperr"
	"skillgrid/internal/models"

	"gorm.io/gorm"
)

type RegistrationService struct {
	db *gorm.DB
}

func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{db: db}
}

// Register records a Pending claim of participation, copying the event's
// fields as they are now. Registering again returns the existing record.
func (s *RegistrationService) Register(ctx context.Context, studentID, eventID string) (*models.Registration, error) {
	if studentID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Please sign in to register.")
	}

	var reg *models.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "Event not found.")
			}
			return err
		}

		var existing models.Registration
		err := tx.Where("user_id = ? AND event_id = ?", studentID, eventID).First(&existing).Error
		if err == nil {
			reg = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		reg = &models.Registration{
			UserID:      studentID,
			EventID:     event.ID,
			Title:       event.Title,
			Date:        event.Date,
			Category:    event.Category,
			Credits:     event.Credits,
			Description: event.Description,
			Status:      models.RegistrationPending,
		}
		return tx.Create(reg).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发重复报名，返回已存在的记录
			return s.Get(ctx, studentID, eventID)
		}
		return nil, err
	}
	return reg, nil
}

func (s *RegistrationService) Get(ctx context.Context, studentID, eventID string) (*models.Registration, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).Where("user_id = ? AND event_id = ?", studentID, eventID).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Registration not found.")
		}
		return nil, err
	}
	return &reg, nil
}

// ListForStudent returns the student's registrations, latest event date first.
func (s *RegistrationService) ListForStudent(ctx context.Context, studentID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.db.WithContext(ctx).
		Where("user_id = ?", studentID).
		Order("date DESC, created_at DESC").
		Find(&regs).Error
	return regs, err
}

// VerificationQueue returns every registration with the student's name, latest event date first.
func (s *RegistrationService) VerificationQueue(ctx context.Context) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.db.WithContext(ctx).
		Table("registrations").
		Select("registrations.*, users.name AS student_name").
		Joins("LEFT JOIN users ON users.id = registrations.user_id").
		Order("registrations.date DESC, registrations.created_at DESC").
		Scan(&regs).Error
	return regs, err
}

// SplitQueue partitions a queue into registrations awaiting review and verified history.
func SplitQueue(regs []models.Registration) (pending, history []models.Registration) {
	pending = []models.Registration{}
	history = []models.Registration{}
	for _, r := range regs {
		if r.Status == models.RegistrationVerified {
			history = append(history, r)
		} else {
			pending = append(pending, r)
		}
	}
	return pending, history
}

func (s *RegistrationService) Pending(ctx context.Context) ([]models.Registration, error) {
	regs, err := s.VerificationQueue(ctx)
	if err != nil {
		return nil, err
	}
	pending, _ := SplitQueue(regs)
	return pending, nil
}

func (s *RegistrationService) History(ctx context.Context) ([]models.Registration, error) {
	regs, err := s.VerificationQueue(ctx)
	if err != nil {
		return nil, err
	}
	_, history := SplitQueue(regs)
	return history, nil
}
