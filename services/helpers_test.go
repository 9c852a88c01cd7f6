package services

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"nutriportions/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLogs(db *gorm.DB, now time.Time) *DailyLogService {
	s := NewDailyLogService(db, time.UTC)
	s.now = func() time.Time { return now }
	return s
}

func createProfile(t *testing.T, db *gorm.DB, email string) *models.Profile {
	t.Helper()
	p := &models.Profile{Email: email, Password: "x", Name: "Test"}
	p.ApplyDefaultGoals()
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func createFood(t *testing.T, db *gorm.DB, f models.FoodBankItem) *models.FoodBankItem {
	t.Helper()
	if err := db.Create(&f).Error; err != nil {
		t.Fatalf("create food: %v", err)
	}
	return &f
}

func chicken() models.FoodBankItem {
	return models.FoodBankItem{
		Name:               "Chicken breast",
		Category:           models.CategoryProtein,
		CaloriesPerUnit:    165,
		ProteinUnits:       1,
		GramsPerSingleItem: 100,
	}
}

type recordedEvent struct {
	userID uint
	event  string
}

type recordingHub struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (h *recordingHub) Broadcast(userID uint, event string, _ any) {
	h.mu.Lock()
	h.events = append(h.events, recordedEvent{userID, event})
	h.mu.Unlock()
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

func fmtPortions(kcal, protein float64) string {
	return fmt.Sprintf("kcal=%.3f protein=%.3f", kcal, protein)
}
