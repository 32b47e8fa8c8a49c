package services

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"skillgrid/internal/apperr"
	"skillgrid/internal/auth"
	"skillgrid/internal/models"
	"skillgrid/internal/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	MaxVerifyTries     = 5
	VerifyCodeTTL      = 15 * time.Minute
	ResendCodeInterval = time.Minute
)

// SignupInput is the sign-up form shared by students and faculty.
type SignupInput struct {
	Name       string `json:"name" form:"name" validate:"notblank,max=100"`
	Email      string `json:"email" form:"email" validate:"required,email"`
	Password   string `json:"password" form:"password"`
	AccessCode string `json:"access_code" form:"access_code"`
}

type AccountService struct {
	profiles          *ProfileService
	mail              *MailService
	facultyAccessCode string
	now               func() time.Time
}

func NewAccountService(profiles *ProfileService, mail *MailService, facultyAccessCode string) *AccountService {
	return &AccountService{profiles: profiles, mail: mail, facultyAccessCode: facultyAccessCode, now: time.Now}
}

func (s *AccountService) SignupStudent(ctx context.Context, in SignupInput) (*models.User, error) {
	return s.signup(ctx, in, models.RoleStudent)
}

// SignupFaculty requires the shared faculty access code.
func (s *AccountService) SignupFaculty(ctx context.Context, in SignupInput) (*models.User, error) {
	if !auth.AccessCodeMatches(in.AccessCode, s.facultyAccessCode) {
		return nil, apperr.New(apperr.Unauthorized, "Invalid faculty access code. Please contact your administrator.")
	}
	return s.signup(ctx, in, models.RoleFaculty)
}

func (s *AccountService) signup(ctx context.Context, in SignupInput, role models.Role) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if len(in.Password) < auth.MinPasswordLength {
		return nil, apperr.Invalid("Password should be at least 6 characters.", map[string]string{"password": "too short"})
	}
	if err := validateInput(in, "Please check your details."); err != nil {
		return nil, err
	}

	if _, err := s.profiles.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.New(apperr.Conflict, "Email already in use.")
	} else if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	code := utils.GenerateVerifyCode()
	sentAt := s.now()
	usr, _, err := s.profiles.CreateUserProfile(ctx, &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		VerifyCode:   code,
		VerifySentAt: &sentAt,
	})
	if err != nil {
		return nil, err
	}

	s.mail.SendVerificationCode(usr.Email, usr.Name, code)
	return usr, nil
}

// VerifyEmail confirms ownership of an address with the code mailed at sign-up.
// A code allows MaxVerifyTries attempts and expires after VerifyCodeTTL; after
// that a new one must be requested with ResendVerificationCode.
func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) (*models.User, error) {
	usr, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.Invalid("Invalid verification code.", map[string]string{"code": "invalid"})
		}
		return nil, err
	}
	if usr.EmailVerified {
		return usr, nil
	}

	db := s.profiles.db.WithContext(ctx)
	if usr.VerifyCode == "" || (usr.VerifySentAt != nil && s.now().After(usr.VerifySentAt.Add(VerifyCodeTTL))) {
		return nil, codeExpired()
	}

	// 先占用一次尝试机会，再比较验证码
	res := db.Model(&models.User{}).
		Where("id = ? AND verify_code = ? AND verify_tries < ?", usr.ID, usr.VerifyCode, MaxVerifyTries).
		UpdateColumn("verify_tries", gorm.Expr("verify_tries + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, codeExpired()
	}

	code = strings.TrimSpace(code)
	if subtle.ConstantTimeCompare([]byte(usr.VerifyCode), []byte(code)) != 1 {
		if usr.VerifyTries+1 >= MaxVerifyTries {
			err := db.Model(&models.User{}).
				Where("id = ? AND verify_tries >= ?", usr.ID, MaxVerifyTries).
				UpdateColumn("verify_code", "").Error
			if err != nil {
				return nil, err
			}
		}
		return nil, apperr.Invalid("Invalid verification code.", map[string]string{"code": "invalid"})
	}

	err = db.Model(&models.User{}).
		Where("id = ?", usr.ID).
		Updates(map[string]interface{}{"email_verified": true, "verify_code": "", "verify_tries": 0}).Error
	if err != nil {
		return nil, err
	}
	usr.EmailVerified = true
	usr.VerifyCode = ""
	usr.VerifyTries = 0
	return usr, nil
}

func codeExpired() error {
	return apperr.Invalid("Verification code expired. Please request a new one.", map[string]string{"code": "expired"})
}

// ResendVerificationCode mails a fresh code to an unconfirmed account. Unknown and
// already verified addresses are ignored so the call does not reveal which exist.
func (s *AccountService) ResendVerificationCode(ctx context.Context, email string) error {
	usr, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil
		}
		return err
	}
	if usr.EmailVerified {
		return nil
	}
	now := s.now()
	if usr.VerifySentAt != nil && now.Before(usr.VerifySentAt.Add(ResendCodeInterval)) {
		return apperr.New(apperr.Validation, "Please wait a minute before requesting another code.")
	}

	code := utils.GenerateVerifyCode()
	err = s.profiles.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", usr.ID).
		Updates(map[string]interface{}{"verify_code": code, "verify_sent_at": now, "verify_tries": 0}).Error
	if err != nil {
		return err
	}
	s.mail.SendVerificationCode(usr.Email, usr.Name, code)
	return nil
}

// MarkEmailVerified confirms an address without a code. Used by operators.
func (s *AccountService) MarkEmailVerified(ctx context.Context, email string) (*models.User, error) {
	usr, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	err = s.profiles.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", usr.ID).
		Updates(map[string]interface{}{"email_verified": true, "verify_code": "", "verify_tries": 0}).Error
	if err != nil {
		return nil, err
	}
	usr.EmailVerified = true
	usr.VerifyCode = ""
	return usr, nil
}

// Login checks a password credential. Unverified addresses cannot sign in.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	usr, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.Unauthenticated, "Invalid email or password.")
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, usr.PasswordHash) {
		return nil, apperr.New(apperr.Unauthenticated, "Invalid email or password.")
	}
	if !usr.EmailVerified {
		return nil, apperr.New(apperr.Unauthenticated, "Please verify your email before signing in.")
	}
	return usr, nil
}

// LoginFaculty is Login restricted to staff accounts.
func (s *AccountService) LoginFaculty(ctx context.Context, email, password string) (*models.User, error) {
	usr, err := s.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !usr.Role.IsStaff() {
		return nil, apperr.New(apperr.Unauthorized, "This account does not have faculty access.")
	}
	return usr, nil
}

// SetRole changes the role of the account with the given email.
func (s *AccountService) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.Invalid("Unknown role.", map[string]string{"role": "must be STUDENT, FACULTY or ADMIN"})
	}
	usr, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.db.WithContext(ctx).Model(usr).Update("role", role).Error; err != nil {
		return nil, err
	}
	usr.Role = role
	return usr, nil
}

// ResetPassword replaces the password of the account with the given email.
func (s *AccountService) ResetPassword(ctx context.Context, email, password string) error {
	if len(password) < auth.MinPasswordLength {
		return apperr.Invalid("Password should be at least 6 characters.", map[string]string{"password": "too short"})
	}
	usr, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	return s.profiles.db.WithContext(ctx).Model(usr).Update("password_hash", hash).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
