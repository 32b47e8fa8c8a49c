package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"skillgrid/internal/apperr"
	"skillgrid/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUserInfo Google 用户信息结构
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
}

type GoogleAuthService struct {
	Config      *oauth2.Config
	UserInfoURL string
	profiles    *ProfileService
}

func NewGoogleAuthService(clientID, clientSecret, siteURL string, profiles *ProfileService) *GoogleAuthService {
	return &GoogleAuthService{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  strings.TrimSuffix(siteURL, "/") + "/api/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		UserInfoURL: googleUserInfoURL,
		profiles:    profiles,
	}
}

// GenerateStateToken 生成随机 state token
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (s *GoogleAuthService) AuthCodeURL(state string) string {
	return s.Config.AuthCodeURL(state)
}

// Exchange trades the callback code for the caller's profile, creating it on first sign-in.
func (s *GoogleAuthService) Exchange(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Failed to sign in with Google.")
	}
	token, err := s.Config.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, err, "Failed to sign in with Google.")
	}
	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transport, err, "Failed to sign in with Google.")
	}
	return s.SignIn(ctx, info)
}

// SignIn links a Google identity to a profile. A known subject reuses its profile.
// An existing address is linked only when Google has verified it; linking an
// unconfirmed password account drops its password and pending code.
func (s *GoogleAuthService) SignIn(ctx context.Context, info *GoogleUserInfo) (*models.User, error) {
	if info.ID == "" || info.Email == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Failed to sign in with Google.")
	}
	email := normalizeEmail(info.Email)
	db := s.profiles.db.WithContext(ctx)

	var usr models.User
	err := db.Where("google_id = ?", info.ID).First(&usr).Error
	if err == nil {
		return &usr, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Where("email = ?", email).First(&usr).Error
	if err == nil {
		if !info.VerifiedEmail {
			return nil, apperr.New(apperr.Unauthenticated, "Your Google email address is not verified.")
		}
		if usr.GoogleID != "" {
			return nil, apperr.New(apperr.Conflict, "This email is linked to another Google account.")
		}
		updates := map[string]interface{}{"google_id": info.ID}
		if !usr.EmailVerified {
			// 未验证的密码账号可能由他人抢注
			updates["email_verified"] = true
			updates["password_hash"] = ""
			updates["verify_code"] = ""
		}
		if err := db.Model(&models.User{}).Where("id = ?", usr.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
		usr.GoogleID = info.ID
		if !usr.EmailVerified {
			usr.EmailVerified = true
			usr.PasswordHash = ""
			usr.VerifyCode = ""
		}
		return &usr, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := info.Name
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	created, _, err := s.profiles.CreateUserProfile(ctx, &models.User{
		ID:            info.ID,
		Name:          name,
		Email:         email,
		Avatar:        info.Picture,
		Role:          models.RoleStudent,
		EmailVerified: info.VerifiedEmail,
		GoogleID:      info.ID,
	})
	return created, err
}

func (s *GoogleAuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	resp, err := s.Config.Client(ctx, token).Get(s.UserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info GoogleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
