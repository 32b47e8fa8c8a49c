package services

import (
	"context"
	"errors"
	"log"
	"time"

	"skillgrid/internal/apperr"
	"skillgrid/internal/models"

	"gorm.io/gorm"
)

// 积分动作
const (
	ActionEventVerified = "Event verified"
)

const (
	SkillBonusPerVerification = 10
	DefaultSkillKey           = models.SkillTeamwork
)

type VerificationService struct {
	db   *gorm.DB
	hub  *ProfileHub
	mail *MailService
}

// NewVerificationService builds the review workflow. hub and mail may be nil.
func NewVerificationService(db *gorm.DB, hub *ProfileHub, mail *MailService) *VerificationService {
	return &VerificationService{db: db, hub: hub, mail: mail}
}

// ResolveSkillKey applies the default to an empty key and rejects unknown ones.
func ResolveSkillKey(key string) (string, error) {
	if key == "" {
		return DefaultSkillKey, nil
	}
	if !models.IsSkillKey(key) {
		return "", apperr.Invalid("Unknown skill.", map[string]string{"skill_key": "must be one of leadership, creativity, teamwork, technical, communication"})
	}
	return key, nil
}

// Verify approves a pending registration and awards its credits plus a skill bonus.
// Status change, profile increments, ledger row and notification commit together.
func (s *VerificationService) Verify(ctx context.Context, actor *models.User, studentID, eventID, skillKey string) (*models.User, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	key, err := ResolveSkillKey(skillKey)
	if err != nil {
		return nil, err
	}

	var student models.User
	var awarded int
	var title string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 仅从 Pending 状态转换，并发重复审核时只有一个成功。
		// 首条语句即为写操作，事务一开始就持有写锁
		now := time.Now()
		res := tx.Model(&models.Registration{}).
			Where("user_id = ? AND event_id = ? AND status = ?", studentID, eventID, models.RegistrationPending).
			Updates(map[string]interface{}{
				"status":      models.RegistrationVerified,
				"skill_key":   key,
				"verified_by": actor.ID,
				"verified_at": now,
			})
		if res.Error != nil {
			return res.Error
		}

		// 2. 读取报名记录
		var reg models.Registration
		if err := tx.Where("user_id = ? AND event_id = ?", studentID, eventID).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "Registration not found.")
			}
			return err
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.Conflict, "Registration is already verified.")
		}
		awarded = reg.Credits
		title = reg.Title

		// 3. 原子累加积分与技能值
		skillCol := "skill_" + key
		res = tx.Model(&models.User{}).
			Where("id = ?", studentID).
			Updates(map[string]interface{}{
				"total_credits": gorm.Expr("total_credits + ?", reg.Credits),
				skillCol:        gorm.Expr(skillCol+" + ?", SkillBonusPerVerification),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "Student profile not found.")
		}

		// 4. 积分明细
		pointLog := models.PointLog{
			UserID:     studentID,
			EventID:    eventID,
			Amount:     reg.Credits,
			SkillKey:   key,
			SkillBonus: SkillBonusPerVerification,
			Action:     ActionEventVerified,
			ActorID:    actor.ID,
		}
		if err := tx.Create(&pointLog).Error; err != nil {
			return err
		}

		// 5. 通知学生
		notification := models.Notification{
			UserID:  studentID,
			ActorID: actor.ID,
			EventID: eventID,
			Type:    models.NotificationTypeVerified,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}

		return tx.First(&student, "id = ?", studentID).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[verify] %s verified %s for %s (+%d credits, %s +%d)", actor.ID, eventID, studentID, awarded, key, SkillBonusPerVerification)
	if s.hub != nil {
		s.hub.Publish(student)
	}
	s.mail.SendRegistrationVerified(student.Email, student.Name, title, awarded)
	return &student, nil
}

// Reject deletes a registration. The reason, if any, is delivered to the student as a notification.
func (s *VerificationService) Reject(ctx context.Context, actor *models.User, studentID, eventID, reason string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}

	var reg models.Registration
	var student models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND event_id = ?", studentID, eventID).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "Registration not found.")
			}
			return err
		}
		if err := tx.Select("id, name, email").First(&student, "id = ?", studentID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		res := tx.Where("user_id = ? AND event_id = ?", studentID, eventID).Delete(&models.Registration{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "Registration not found.")
		}

		notification := models.Notification{
			UserID:  studentID,
			ActorID: actor.ID,
			EventID: eventID,
			Type:    models.NotificationTypeRejected,
			Reason:  reason,
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return err
	}

	log.Printf("[verify] %s rejected %s for %s", actor.ID, eventID, studentID)
	if student.Email != "" {
		s.mail.SendRegistrationRejected(student.Email, student.Name, reg.Title, reason)
	}
	return nil
}

func requireStaff(actor *models.User) error {
	if actor == nil {
		return apperr.New(apperr.Unauthenticated, "Please sign in.")
	}
	if !actor.Role.IsStaff() {
		return apperr.New(apperr.Unauthorized, "Only faculty can review registrations.")
	}
	return nil
}
