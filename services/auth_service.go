package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"nutriportions/models"
	"nutriportions/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Mailer sends account emails.
type Mailer interface {
	SendResetEmail(ctx context.Context, to, code string) error
	SendWelcomeEmail(ctx context.Context, to, name, tempPassword string) error
}

const resetCodeTTL = 30 * time.Minute

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	logs      *DailyLogService
	mailer    Mailer
	verifier  *IdentityVerifier
}

func NewAuthService(db *gorm.DB, jwtSecret string, logs *DailyLogService, mailer Mailer, verifier *IdentityVerifier) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret, logs: logs, mailer: mailer, verifier: verifier}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// AuthResult is returned by every sign-in path.
type AuthResult struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, err := mail.ParseAddress(s); err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return s, nil
}

func validatePassword(pw string) error {
	if len(pw) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	return nil
}

// createProfile inserts p and opens today's log.
func (s *AuthService) createProfile(p *models.Profile) error {
	var count int64
	if err := s.db.Model(&models.Profile{}).Where("email = ?", p.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("email %s: %w", p.Email, ErrConflict)
	}
	if err := s.db.Create(p).Error; err != nil {
		return err
	}
	if s.logs != nil {
		if _, err := s.logs.EnsureDailyLog(p.ID, s.logs.Today()); err != nil {
			log.Warn().Err(err).Str(utils.PACKAGE, "services").Uint(utils.USER, p.ID).Msg("could not open today's log")
		}
	}
	return nil
}

func (s *AuthService) issue(p *models.Profile) (*AuthResult, error) {
	tok, err := utils.GenerateJWT(s.jwtSecret, p.ID, p.Email, p.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, Profile: p}, nil
}

func (s *AuthService) Register(req RegisterRequest) (*AuthResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	p := &models.Profile{Email: email, Password: hash, Name: strings.TrimSpace(req.Name), AuthProvider: "password"}
	p.ApplyDefaultGoals()
	if err := s.createProfile(p); err != nil {
		return nil, err
	}
	return s.issue(p)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var p models.Profile
	if err := s.db.Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !utils.CheckPassword(p.Password, password) {
		return nil, ErrUnauthorized
	}
	return s.issue(&p)
}

// ForgotPassword mails a reset code. Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if s.mailer == nil {
		return fmt.Errorf("password reset: %w", ErrUnavailable)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	var p models.Profile
	if err := s.db.Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	code, err := utils.GenerateRandomToken(6)
	if err != nil {
		return err
	}
	exp := time.Now().Add(resetCodeTTL)
	if err := s.db.Model(&p).Updates(map[string]any{"reset_code": code, "reset_expires_at": exp}).Error; err != nil {
		return err
	}
	return s.mailer.SendResetEmail(ctx, p.Email, code)
}

func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	var p models.Profile
	if err := s.db.Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if p.ResetCode == "" || !strings.EqualFold(p.ResetCode, strings.TrimSpace(code)) ||
		p.ResetExpiresAt == nil || time.Now().After(*p.ResetExpiresAt) {
		return ErrUnauthorized
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(&p).Updates(map[string]any{
		"password":         hash,
		"reset_code":       "",
		"reset_expires_at": nil,
	}).Error
}

// SocialLogin exchanges a provider identity token for our own token,
// creating the profile on first sign-in.
func (s *AuthService) SocialLogin(ctx context.Context, provider, idToken, name string) (*AuthResult, error) {
	if s.verifier == nil {
		return nil, fmt.Errorf("social sign-in: %w", ErrUnavailable)
	}
	id, err := s.verifier.Verify(ctx, provider, idToken)
	if err != nil {
		return nil, err
	}
	var p models.Profile
	err = s.db.Where("email = ?", id.Email).First(&p).Error
	if err == nil {
		return s.issue(&p)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// social accounts never sign in with a password; store an unguessable one
	random, err := utils.GenerateRandomToken(32)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(random)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = id.Name
	}
	p = models.Profile{Email: id.Email, Password: hash, Name: name, AuthProvider: provider}
	p.ApplyDefaultGoals()
	if err := s.createProfile(&p); err != nil {
		return nil, err
	}
	return s.issue(&p)
}
