package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"nutriportions/models"
	"nutriportions/utils"

	"gorm.io/gorm"
)

type FoodBankService struct {
	db *gorm.DB
}

func NewFoodBankService(db *gorm.DB) *FoodBankService {
	return &FoodBankService{db: db}
}

type FoodFilter struct {
	Search      string
	Category    string
	SubCategory string
	Limit       int
}

// CategoryInfo is a category and the sub-categories present under it.
type CategoryInfo struct {
	Name          string   `json:"name"`
	SubCategories []string `json:"sub_categories"`
}

// FoodPreview is the result of a portion calculation without logging it.
type FoodPreview struct {
	Food      models.FoodBankItem `json:"food"`
	Measure   utils.Measurement   `json:"measure"`
	Quantity  float64             `json:"quantity"`
	Servings  float64             `json:"servings"`
	Grams     float64             `json:"grams"`
	Portions  utils.Portions      `json:"portions"`
	Available []utils.Measurement `json:"available_measures"`
}

// List searches by name when Search is set, ignoring the category filters;
// otherwise it filters by category and sub-category.
func (s *FoodBankService) List(f FoodFilter) ([]models.FoodBankItem, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 200
	}
	q := s.db.Model(&models.FoodBankItem{})
	if term := strings.TrimSpace(f.Search); term != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", likeContains(strings.ToLower(term)))
	} else {
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if f.SubCategory != "" {
			q = q.Where("sub_category = ?", f.SubCategory)
		}
	}
	var out []models.FoodBankItem
	err := q.Order("name").Limit(f.Limit).Find(&out).Error
	return out, err
}

// Categories lists categories in display order; restaurants is always shown.
func (s *FoodBankService) Categories() ([]CategoryInfo, error) {
	var rows []struct {
		Category    string
		SubCategory string
	}
	err := s.db.Model(&models.FoodBankItem{}).
		Distinct("category", "sub_category").
		Order("sub_category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	subs := make(map[string][]string)
	for _, r := range rows {
		if _, ok := subs[r.Category]; !ok {
			subs[r.Category] = []string{}
		}
		if r.SubCategory != "" {
			subs[r.Category] = append(subs[r.Category], r.SubCategory)
		}
	}
	out := make([]CategoryInfo, 0, len(models.CategoryOrder))
	for _, c := range models.CategoryOrder {
		list, ok := subs[c]
		if !ok && c != models.CategoryRestaurants {
			continue
		}
		if list == nil {
			list = []string{}
		}
		out = append(out, CategoryInfo{Name: c, SubCategories: list})
	}
	return out, nil
}

func (s *FoodBankService) Get(id uint) (*models.FoodBankItem, error) {
	var f models.FoodBankItem
	if err := s.db.First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("food %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &f, nil
}

// FindByName matches a free-text label against the catalog: an exact
// (case-insensitive) name first, then the shortest name containing the
// label's words as whole words, so "egg" never maps to "eggplant".
func (s *FoodBankService) FindByName(name string) (*models.FoodBankItem, error) {
	term := strings.ToLower(strings.TrimSpace(name))
	if term == "" {
		return nil, nil
	}
	var f models.FoodBankItem
	err := s.db.Where("LOWER(name) = ?", term).First(&f).Error
	if err == nil {
		return &f, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var candidates []models.FoodBankItem
	if err := s.db.Where("LOWER(name) LIKE ? ESCAPE '\\'", likeContains(term)).
		Order("LENGTH(name), id").Limit(50).Find(&candidates).Error; err != nil {
		return nil, err
	}
	want := words(term)
	for i := range candidates {
		if containsWords(words(candidates[i].Name), want) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// likeContains builds a %term% pattern with LIKE wildcards escaped.
func likeContains(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsWords reports whether want appears as a contiguous run in have.
func containsWords(have, want []string) bool {
	if len(want) == 0 {
		return false
	}
outer:
	for i := 0; i+len(want) <= len(have); i++ {
		for j, w := range want {
			if have[i+j] != w {
				continue outer
			}
		}
		return true
	}
	return false
}

func (s *FoodBankService) Preview(id uint, measure string, quantity float64) (*FoodPreview, error) {
	food, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if measure == "" {
		measure = string(utils.MeasureServing)
	}
	m, err := utils.ParseMeasurement(measure)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	servings, err := utils.Servings(food, m, quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p, grams, _ := utils.ScaleFood(food, m, quantity)
	return &FoodPreview{
		Food:      *food,
		Measure:   m,
		Quantity:  quantity,
		Servings:  servings,
		Grams:     grams,
		Portions:  p,
		Available: utils.AvailableMeasurements(food),
	}, nil
}

func validateFood(f *models.FoodBankItem) error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	known := false
	for _, c := range models.CategoryOrder {
		if c == f.Category {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, f.Category)
	}
	for _, v := range []float64{
		f.CaloriesPerUnit, f.ProteinUnits, f.CarbUnits, f.FatUnits, f.VegUnits, f.FruitUnits,
		f.GramsPerSingleItem, f.ItemsPerUnit, f.GramsPerCup, f.GramsPerTbsp,
	} {
		if v < 0 {
			return fmt.Errorf("%w: values must not be negative", ErrInvalidInput)
		}
	}
	return nil
}

func (s *FoodBankService) Create(f *models.FoodBankItem) error {
	if err := validateFood(f); err != nil {
		return err
	}
	f.ID = 0
	return s.db.Create(f).Error
}

// Update replaces a catalog row. Items already logged keep their values.
func (s *FoodBankService) Update(id uint, f *models.FoodBankItem) (*models.FoodBankItem, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := validateFood(f); err != nil {
		return nil, err
	}
	f.ID = existing.ID
	f.CreatedAt = existing.CreatedAt
	if err := s.db.Save(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

var csvColumns = []string{
	"name", "category", "sub_category", "img_url", "unit_label",
	"calories_per_unit", "protein_units", "carb_units", "fat_units", "veg_units", "fruit_units",
	"grams_per_single_item", "items_per_unit", "grams_per_cup", "grams_per_tbsp",
}

// ImportCSV upserts catalog rows by (name, category). The header row names
// the columns; unknown columns are ignored and missing numbers read as zero.
func (s *FoodBankService) ImportCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["name"]; !ok {
		return 0, fmt.Errorf("%w: csv needs a name column", ErrInvalidInput)
	}

	n := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			if i, ok := idx[col]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		num := func(col string) (float64, error) {
			v := get(col)
			if v == "" {
				return 0, nil
			}
			return strconv.ParseFloat(v, 64)
		}
		f := models.FoodBankItem{
			Name:        get("name"),
			Category:    get("category"),
			SubCategory: get("sub_category"),
			ImgURL:      get("img_url"),
			UnitLabel:   get("unit_label"),
		}
		targets := []*float64{
			&f.CaloriesPerUnit, &f.ProteinUnits, &f.CarbUnits, &f.FatUnits, &f.VegUnits, &f.FruitUnits,
			&f.GramsPerSingleItem, &f.ItemsPerUnit, &f.GramsPerCup, &f.GramsPerTbsp,
		}
		for i, col := range csvColumns[5:] {
			v, err := num(col)
			if err != nil {
				return n, fmt.Errorf("line %d %s: %w", line, col, err)
			}
			*targets[i] = v
		}
		if err := validateFood(&f); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}

		var existing models.FoodBankItem
		err = s.db.Where("name = ? AND category = ?", f.Name, f.Category).First(&existing).Error
		switch {
		case err == nil:
			f.ID = existing.ID
			f.CreatedAt = existing.CreatedAt
			err = s.db.Save(&f).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = s.db.Create(&f).Error
		}
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	return n, nil
}
