package services

import (
	"context"
	"fmt"

	"nutriportions/models"
	"nutriportions/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, img *utils.DecodedImage, prefix string) (string, error)
}

// AnalyzedItem is an estimate reconciled into portions.
type AnalyzedItem struct {
	ItemEstimate
	Portions utils.MacroPortions `json:"portions"`
	FoodID   *uint               `json:"food_id"`
	Notes    []utils.BalanceNote `json:"notes,omitempty"`
}

type AnalysisResult struct {
	ID       uint           `json:"id"`
	ImageURL string         `json:"image_url,omitempty"`
	Analyzer string         `json:"analyzer"`
	Items    []AnalyzedItem `json:"items"`
}

type PhotoAnalysisService struct {
	db       *gorm.DB
	analyzer Analyzer
	foods    *FoodBankService
	images   ImageStore
}

// NewPhotoAnalysisService wires an analyzer; images may be nil to skip
// storing photos.
func NewPhotoAnalysisService(db *gorm.DB, analyzer Analyzer, foods *FoodBankService, images ImageStore) *PhotoAnalysisService {
	return &PhotoAnalysisService{db: db, analyzer: analyzer, foods: foods, images: images}
}

// Analyze runs one photo through the analyzer. There is no retry; a failed
// call is reported to the caller as is.
func (s *PhotoAnalysisService) Analyze(ctx context.Context, userID uint, dataURI string) (*AnalysisResult, error) {
	if s.analyzer == nil {
		return nil, fmt.Errorf("photo analysis: %w", ErrUnavailable)
	}
	img, err := utils.DecodeDataURI(dataURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	p, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}
	logger := log.With().Str(utils.PACKAGE, "services").Str(utils.FUNC, "Analyze").Uint(utils.USER, userID).Logger()

	res := &AnalysisResult{Analyzer: s.analyzer.Name(), Items: []AnalyzedItem{}}
	if s.images != nil {
		url, err := s.images.UploadImage(ctx, img, fmt.Sprintf("meal-photos/%d", userID))
		if err != nil {
			logger.Warn().Err(err).Msg("photo upload failed, analyzing anyway")
		} else {
			res.ImageURL = url
		}
	}

	estimates, raw, err := s.analyzer.Analyze(ctx, img)
	if err != nil {
		utils.PhotoAnalyses.WithLabelValues(s.analyzer.Name(), "error").Inc()
		logger.Error().Err(err).Msg("analysis failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(estimates) > MaxAnalyzedItems {
		estimates = estimates[:MaxAnalyzedItems]
	}

	for _, e := range estimates {
		item, err := s.reconcile(e, p.KcalGoal)
		if err != nil {
			return nil, err
		}
		res.Items = append(res.Items, item)
	}

	outcome := "ok"
	if len(res.Items) == 0 {
		outcome = "empty"
	}
	utils.PhotoAnalyses.WithLabelValues(s.analyzer.Name(), outcome).Inc()

	rec := models.PhotoAnalysis{
		UserID:    userID,
		ImageURL:  res.ImageURL,
		Analyzer:  s.analyzer.Name(),
		ItemCount: len(res.Items),
		Raw:       datatypes.JSON(rawOrEmpty(raw)),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	res.ID = rec.ID
	logger.Info().Str(utils.EVENT, "photo_analyzed").Int("items", len(res.Items)).Send()
	return res, nil
}

func (s *PhotoAnalysisService) reconcile(e ItemEstimate, kcalGoal float64) (AnalyzedItem, error) {
	item := AnalyzedItem{ItemEstimate: e}
	if e.Portions != nil && (*e.Portions != utils.MacroPortions{}) {
		item.Portions = *e.Portions
	} else {
		item.Portions = utils.PortionsFromMacros(e.Calories, e.ProteinG, e.CarbsG, e.FatsG)
	}
	item.ItemEstimate.Portions = nil

	if s.foods != nil {
		food, err := s.foods.FindByName(e.Name)
		if err != nil {
			return item, err
		}
		if food != nil {
			item.FoundInCatalog = true
			id := food.ID
			item.FoodID = &id
			if item.Category == "" {
				item.Category = food.Category
			}
			if item.CategoryImage == "" {
				item.CategoryImage = food.ImgURL
			}
		}
	}
	item.Notes = utils.AssessBalance(utils.MacroEstimate{
		Name: e.Name, Grams: e.Grams, Calories: e.Calories,
		ProteinG: e.ProteinG, CarbsG: e.CarbsG, FatG: e.FatsG,
	}, kcalGoal)
	return item, nil
}

func rawOrEmpty(raw []byte) []byte {
	if len(raw) == 0 || !json.Valid(raw) {
		return []byte("{}")
	}
	return raw
}
