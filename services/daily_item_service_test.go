package services

import (
	"errors"
	"testing"
	"time"

	"nutriportions/models"
	"nutriportions/utils"
)

const testDay = "2024-05-15"

func newItemFixture(t *testing.T) (*DailyItemService, *DailyLogService, *recordingHub, *models.Profile, *models.FoodBankItem) {
	t.Helper()
	db := newTestDB(t)
	logs := newTestLogs(db, time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC))
	hub := &recordingHub{}
	p := createProfile(t, db, "dana@example.com")
	f := createFood(t, db, chicken())
	return NewDailyItemService(db, logs, hub), logs, hub, p, f
}

func TestAddFromFoodBankSnapshotsValues(t *testing.T) {
	t.Parallel()
	items, logs, hub, p, f := newItemFixture(t)

	it, err := items.AddFromFoodBank(p.ID, AddFoodRequest{
		Date: testDay, MealCategory: models.MealLunch, FoodID: f.ID, Measure: "grams", Quantity: 250,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !near(it.Kcal, 412.5) || !near(it.ProteinUnits, 2.5) || it.Grams != 250 {
		t.Fatalf("unexpected item values %s grams=%.1f", fmtPortions(it.Kcal, it.ProteinUnits), it.Grams)
	}
	if hub.count() != 1 {
		t.Fatalf("expected one broadcast, got %d", hub.count())
	}

	// editing the catalog must not change what was logged
	if err := items.db.Model(f).Update("calories_per_unit", 999).Error; err != nil {
		t.Fatalf("update food: %v", err)
	}
	day, err := logs.GetDay(p.ID, testDay)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if !near(day.Totals.Kcal, 412.5) {
		t.Fatalf("expected totals to keep 412.5 kcal, got %.3f", day.Totals.Kcal)
	}
	if len(day.Meals[models.MealLunch].Items) != 1 || len(day.Meals[models.MealBreakfast].Items) != 0 {
		t.Fatalf("items not grouped by meal: %+v", day.Meals)
	}
	if !near(day.Log.TotalKcal, 412.5) {
		t.Fatalf("expected cached total 412.5, got %.3f", day.Log.TotalKcal)
	}
}

func TestAddFromFoodBankRejectsBadInput(t *testing.T) {
	t.Parallel()
	items, _, _, p, f := newItemFixture(t)

	cases := []struct {
		name string
		req  AddFoodRequest
		want error
	}{
		{"meal", AddFoodRequest{MealCategory: "brunch", FoodID: f.ID, Quantity: 1}, ErrInvalidInput},
		{"quantity", AddFoodRequest{MealCategory: models.MealLunch, FoodID: f.ID, Quantity: 0}, ErrInvalidInput},
		{"measure", AddFoodRequest{MealCategory: models.MealLunch, FoodID: f.ID, Measure: "tbsp", Quantity: 1}, ErrInvalidInput},
		{"food", AddFoodRequest{MealCategory: models.MealLunch, FoodID: f.ID + 100, Quantity: 1}, ErrNotFound},
	}
	for _, tc := range cases {
		if _, err := items.AddFromFoodBank(p.ID, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestUpdateQuantityScalesStoredValues(t *testing.T) {
	t.Parallel()
	items, logs, _, p, f := newItemFixture(t)

	it, err := items.AddFromFoodBank(p.ID, AddFoodRequest{
		Date: testDay, MealCategory: models.MealDinner, FoodID: f.ID, Measure: "grams", Quantity: 100,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// a catalog change between add and edit must not leak into the edit
	if err := items.db.Model(f).Update("calories_per_unit", 50).Error; err != nil {
		t.Fatalf("update food: %v", err)
	}

	it, err = items.UpdateQuantity(p.ID, it.ID, 150)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if !near(it.Kcal, 247.5) || !near(it.ProteinUnits, 1.5) || !near(it.Grams, 150) {
		t.Fatalf("unexpected scaled values %s grams=%.2f", fmtPortions(it.Kcal, it.ProteinUnits), it.Grams)
	}
	day, err := logs.GetDay(p.ID, testDay)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if !near(day.Totals.Kcal, 247.5) || !near(day.Log.TotalKcal, 247.5) {
		t.Fatalf("totals not refreshed: derived %.2f cached %.2f", day.Totals.Kcal, day.Log.TotalKcal)
	}

	if _, err := items.UpdateQuantity(p.ID, it.ID, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero quantity, got %v", err)
	}
	other := createProfile(t, items.db, "other@example.com")
	if _, err := items.UpdateQuantity(other.ID, it.ID, 2); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for another user, got %v", err)
	}
}

func TestDeleteRecomputesTotals(t *testing.T) {
	t.Parallel()
	items, logs, hub, p, f := newItemFixture(t)

	a, err := items.AddFromFoodBank(p.ID, AddFoodRequest{Date: testDay, MealCategory: models.MealLunch, FoodID: f.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := items.AddFromFoodBank(p.ID, AddFoodRequest{Date: testDay, MealCategory: models.MealLunch, FoodID: f.ID, Quantity: 2}); err != nil {
		t.Fatalf("add b: %v", err)
	}
	if err := items.Delete(p.ID, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	day, err := logs.GetDay(p.ID, testDay)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if len(day.Items) != 1 || !near(day.Totals.Kcal, 330) || !near(day.Log.TotalKcal, 330) {
		t.Fatalf("expected one item worth 330 kcal, got %d items %.2f kcal", len(day.Items), day.Totals.Kcal)
	}
	if hub.count() != 3 {
		t.Fatalf("expected 3 broadcasts, got %d", hub.count())
	}
	if err := items.Delete(p.ID, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestAddAnalyzedItems(t *testing.T) {
	t.Parallel()
	items, logs, _, p, f := newItemFixture(t)

	out, err := items.AddAnalyzedItems(p.ID, testDay, models.MealBreakfast, []AnalyzedItemInput{
		{Name: "Omelette", Grams: 120, Calories: 300, Portions: utils.MacroPortions{Protein: 1.5}},
		{Name: "Chicken breast", Calories: 165, Portions: utils.MacroPortions{Protein: 1}, FoodID: &f.ID},
	})
	if err != nil {
		t.Fatalf("add analyzed: %v", err)
	}
	if len(out) != 2 || out[0].Source != models.SourceAI || out[0].Quantity != 1 || out[0].MeasureType != string(utils.MeasureUnit) {
		t.Fatalf("unexpected analyzed items %+v", out)
	}
	day, err := logs.GetDay(p.ID, testDay)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if !near(day.Totals.Kcal, 465) || !near(day.Totals.Protein, 2.5) {
		t.Fatalf("unexpected totals %s", fmtPortions(day.Totals.Kcal, day.Totals.Protein))
	}
	if _, err := items.AddAnalyzedItems(p.ID, testDay, models.MealBreakfast, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty list, got %v", err)
	}
}

func TestAddAnalyzedItemsRejectsBadEstimates(t *testing.T) {
	t.Parallel()
	items, logs, _, p, _ := newItemFixture(t)

	missing := uint(9999)
	bad := map[string]AnalyzedItemInput{
		"unknown food":     {Name: "Mystery", Calories: 100, FoodID: &missing},
		"negative protein": {Name: "Soup", Calories: 100, Portions: utils.MacroPortions{Protein: -1}},
		"negative fat":     {Name: "Salad", Calories: 100, Portions: utils.MacroPortions{Fats: -0.5}},
		"negative grams":   {Name: "Bread", Grams: -20, Calories: 100},
	}
	for name, in := range bad {
		if _, err := items.AddAnalyzedItems(p.ID, testDay, models.MealLunch, []AnalyzedItemInput{in}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
	day, err := logs.GetDay(p.ID, testDay)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if len(day.Items) != 0 {
		t.Fatalf("expected rejected estimates to leave the day empty, got %d items", len(day.Items))
	}
}

func TestHistoryZeroFillsDays(t *testing.T) {
	t.Parallel()
	items, logs, _, p, f := newItemFixture(t)

	if _, err := items.AddFromFoodBank(p.ID, AddFoodRequest{Date: "2024-05-14", MealCategory: models.MealLunch, FoodID: f.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	h, err := logs.History(p.ID, "2024-05-13", "2024-05-15")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h) != 3 {
		t.Fatalf("expected 3 days, got %d", len(h))
	}
	if h[0].Totals.Kcal != 0 || !near(h[1].Totals.Kcal, 165) || h[2].Totals.Kcal != 0 {
		t.Fatalf("unexpected history %+v", h)
	}
	if _, err := logs.History(p.ID, "2024-05-15", "2024-05-13"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for reversed range, got %v", err)
	}
}

func TestSetWaterProgress(t *testing.T) {
	t.Parallel()
	_, logs, _, p, _ := newItemFixture(t)

	if _, err := logs.SetWater(p.ID, testDay, 6); err != nil {
		t.Fatalf("set water: %v", err)
	}
	day, err := logs.GetDay(p.ID, testDay)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if day.Water.Consumed != 6 || !near(day.Water.Percent, 0.5) || day.Water.Remaining != 6 {
		t.Fatalf("unexpected water progress %+v", day.Water)
	}
	if _, err := logs.SetWater(p.ID, testDay, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
