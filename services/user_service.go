package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutriportions/models"
	"nutriportions/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ProfileService struct {
	db     *gorm.DB
	auth   *AuthService
	mailer Mailer
	images ImageStore
}

func NewProfileService(db *gorm.DB, auth *AuthService, mailer Mailer, images ImageStore) *ProfileService {
	return &ProfileService{db: db, auth: auth, mailer: mailer, images: images}
}

type ProfileInput struct {
	Name           *string  `json:"name"`
	Gender         *string  `json:"gender"`
	Birthday       *string  `json:"birthday"` // YYYY-MM-DD
	HeightCm       *float64 `json:"height"`
	ActivityLevel  *string  `json:"activity_level"`
	WaterDailyGoal *float64 `json:"water_daily_goal"`
	ProfilePicture *string  `json:"profile_picture"` // data URI
}

// GoalsInput carries the targets a coach sets for a client.
type GoalsInput struct {
	KcalGoal               *float64 `json:"kcal_goal"`
	ProteinUnits           *float64 `json:"protein_units"`
	CarbUnits              *float64 `json:"carb_units"`
	FatUnits               *float64 `json:"fat_units"`
	VegUnits               *float64 `json:"veg_units"`
	FruitUnits             *float64 `json:"fruit_units"`
	WaterDailyGoal         *float64 `json:"water_daily_goal"`
	WeeklyCardioMinutes    *float64 `json:"weekly_cardio_minutes"`
	WeeklyStrengthWorkouts *float64 `json:"weekly_strength_workouts"`
}

type CreateClientRequest struct {
	Email    string     `json:"email" binding:"required"`
	Name     string     `json:"name" binding:"required"`
	Password string     `json:"password"`
	Gender   string     `json:"gender"`
	Goals    GoalsInput `json:"goals"`
}

func (s *ProfileService) Get(userID uint) (*models.Profile, error) {
	return loadProfile(s.db, userID)
}

// ProfileView adds derived fields to the stored profile.
type ProfileView struct {
	*models.Profile
	Age int `json:"age,omitempty"`
}

func (s *ProfileService) View(userID uint) (*ProfileView, error) {
	p, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	v := &ProfileView{Profile: p}
	if p.Birthday != nil {
		v.Age = utils.CalculateAge(*p.Birthday, time.Now())
	}
	return v, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileInput) (*models.Profile, error) {
	p, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*in.Gender))
		if g != "" && g != "male" && g != "female" {
			return nil, fmt.Errorf("%w: gender must be male or female", ErrInvalidInput)
		}
		p.Gender = g
	}
	if in.Birthday != nil {
		b, err := utils.ParseDay(*in.Birthday)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		p.Birthday = &b
	}
	if in.HeightCm != nil {
		if *in.HeightCm < 50 || *in.HeightCm > 250 {
			return nil, fmt.Errorf("%w: height out of range", ErrInvalidInput)
		}
		p.HeightCm = *in.HeightCm
	}
	if in.ActivityLevel != nil {
		p.ActivityLevel = *in.ActivityLevel
	}
	if in.WaterDailyGoal != nil {
		if *in.WaterDailyGoal < 0 {
			return nil, fmt.Errorf("%w: water goal must not be negative", ErrInvalidInput)
		}
		p.WaterDailyGoal = *in.WaterDailyGoal
	}
	if in.ProfilePicture != nil && *in.ProfilePicture != "" {
		if s.images == nil {
			return nil, fmt.Errorf("profile picture: %w", ErrUnavailable)
		}
		img, err := utils.DecodeDataURI(*in.ProfilePicture)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		url, err := s.images.UploadImage(ctx, img, "profile-pictures")
		if err != nil {
			return nil, err
		}
		p.ProfilePicture = url
	}
	if err := s.db.Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func applyGoals(p *models.Profile, in GoalsInput) error {
	set := func(dst *float64, v *float64) error {
		if v == nil {
			return nil
		}
		if *v < 0 {
			return fmt.Errorf("%w: goals must not be negative", ErrInvalidInput)
		}
		*dst = *v
		return nil
	}
	for _, f := range []struct {
		dst *float64
		v   *float64
	}{
		{&p.KcalGoal, in.KcalGoal},
		{&p.ProteinUnits, in.ProteinUnits},
		{&p.CarbUnits, in.CarbUnits},
		{&p.FatUnits, in.FatUnits},
		{&p.VegUnits, in.VegUnits},
		{&p.FruitUnits, in.FruitUnits},
		{&p.WaterDailyGoal, in.WaterDailyGoal},
		{&p.WeeklyCardioMinutes, in.WeeklyCardioMinutes},
		{&p.WeeklyStrengthWorkouts, in.WeeklyStrengthWorkouts},
	} {
		if err := set(f.dst, f.v); err != nil {
			return err
		}
	}
	return nil
}

// UpdateGoals sets a client's targets by hand, detaching any template.
func (s *ProfileService) UpdateGoals(userID uint, in GoalsInput) (*models.Profile, error) {
	p, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if err := applyGoals(p, in); err != nil {
		return nil, err
	}
	p.TargetsOverride = true
	if err := s.db.Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// CreateClient opens an account for a coached client. Without a password a
// temporary one is generated and mailed.
func (s *ProfileService) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Profile, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	pw := req.Password
	generated := pw == ""
	if generated {
		if pw, err = utils.GenerateRandomToken(10); err != nil {
			return nil, err
		}
	}
	if err := validatePassword(pw); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(pw)
	if err != nil {
		return nil, err
	}
	p := &models.Profile{
		Email:        email,
		Password:     hash,
		Name:         strings.TrimSpace(req.Name),
		Gender:       strings.ToLower(req.Gender),
		AuthProvider: "password",
		Role:         models.RoleUser,
	}
	p.ApplyDefaultGoals()
	if err := applyGoals(p, req.Goals); err != nil {
		return nil, err
	}
	if err := s.auth.createProfile(p); err != nil {
		return nil, err
	}
	if generated && s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(ctx, p.Email, p.Name, pw); err != nil {
			log.Warn().Err(err).Str(utils.PACKAGE, "services").Uint(utils.USER, p.ID).Msg("welcome email not sent")
		}
	}
	return p, nil
}

func (s *ProfileService) ListClients(search string) ([]models.Profile, error) {
	q := s.db.Where("role = ?", models.RoleUser)
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		pat := likeContains(term)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", pat, pat)
	}
	var out []models.Profile
	err := q.Order("name").Find(&out).Error
	return out, err
}

func (s *ProfileService) ListTemplates() ([]models.TargetTemplate, error) {
	var out []models.TargetTemplate
	err := s.db.Order("name").Find(&out).Error
	return out, err
}

func (s *ProfileService) CreateTemplate(t *models.TargetTemplate) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: template name is required", ErrInvalidInput)
	}
	for _, v := range []float64{t.KcalGoal, t.ProteinUnits, t.CarbUnits, t.FatUnits, t.VegUnits, t.FruitUnits, t.WeeklyCardioMinutes, t.WeeklyStrengthWorkouts} {
		if v < 0 {
			return fmt.Errorf("%w: goals must not be negative", ErrInvalidInput)
		}
	}
	t.ID = 0
	return s.db.Create(t).Error
}

// ApplyTemplate copies a template's goals onto a client.
func (s *ProfileService) ApplyTemplate(userID, templateID uint) (*models.Profile, error) {
	p, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	var t models.TargetTemplate
	if err := s.db.First(&t, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template %d: %w", templateID, ErrNotFound)
		}
		return nil, err
	}
	p.KcalGoal = t.KcalGoal
	p.ProteinUnits = t.ProteinUnits
	p.CarbUnits = t.CarbUnits
	p.FatUnits = t.FatUnits
	p.VegUnits = t.VegUnits
	p.FruitUnits = t.FruitUnits
	p.WeeklyCardioMinutes = t.WeeklyCardioMinutes
	p.WeeklyStrengthWorkouts = t.WeeklyStrengthWorkouts
	p.TargetTemplateID = &t.ID
	p.TargetsOverride = false
	if err := s.db.Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// PromoteAdmin gives an existing account the admin role.
func (s *ProfileService) PromoteAdmin(email string) error {
	res := s.db.Model(&models.Profile{}).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Update("role", models.RoleAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile %s: %w", email, ErrNotFound)
	}
	return nil
}
