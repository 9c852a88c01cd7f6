package services

import (
	"context"
	"errors"
	"fmt"

	"nutriportions/models"
	"nutriportions/utils"

	"gorm.io/gorm"
)

type GuideInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"` // optional data URI
}

type GuideService struct {
	db     *gorm.DB
	images ImageStore
}

func NewGuideService(db *gorm.DB, images ImageStore) *GuideService {
	return &GuideService{db: db, images: images}
}

// List returns guides newest first.
func (s *GuideService) List() ([]models.Guide, error) {
	var out []models.Guide
	err := s.db.Order("created_at desc, id desc").Find(&out).Error
	return out, err
}

func (s *GuideService) Create(ctx context.Context, in GuideInput) (*models.Guide, error) {
	g := models.Guide{Title: in.Title, Description: in.Description, URL: in.URL}
	if in.Image != "" {
		if s.images == nil {
			return nil, fmt.Errorf("guide image: %w", ErrUnavailable)
		}
		img, err := utils.DecodeDataURI(in.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if g.ImageURL, err = s.images.UploadImage(ctx, img, "guides"); err != nil {
			return nil, err
		}
	}
	if err := s.db.Create(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GuideService) Delete(id uint) error {
	var g models.Guide
	if err := s.db.First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("guide %d: %w", id, ErrNotFound)
		}
		return err
	}
	return s.db.Delete(&g).Error
}
