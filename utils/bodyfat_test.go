package utils_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"nutriportions/utils"
)

var refSkinfolds = utils.Skinfolds{Biceps: 10, Triceps: 15, Subscapular: 20, Suprailiac: 15}

func TestAssessBodyCompositionMale(t *testing.T) {
	t.Parallel()
	bc, err := utils.AssessBodyComposition("male", 25, 80, refSkinfolds)
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if bc.FatPercent != 21.1 {
		t.Fatalf("expected 21.1%% body fat, got %.2f", bc.FatPercent)
	}
	if math.Abs(bc.FatMass-16.88) > 0.001 || math.Abs(bc.LeanMass-63.12) > 0.001 {
		t.Fatalf("expected 16.88/63.12 kg, got %.2f/%.2f", bc.FatMass, bc.LeanMass)
	}
}

func TestAssessBodyCompositionFemale(t *testing.T) {
	t.Parallel()
	bc, err := utils.AssessBodyComposition("Female", 25, 60, refSkinfolds)
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if bc.FatPercent != 29.5 {
		t.Fatalf("expected 29.5%% body fat, got %.2f", bc.FatPercent)
	}
}

func TestAssessBodyCompositionValidation(t *testing.T) {
	t.Parallel()
	if _, err := utils.AssessBodyComposition("male", 16, 80, refSkinfolds); err == nil {
		t.Fatalf("expected age error")
	}
	sf := refSkinfolds
	sf.Triceps = 55
	if _, err := utils.AssessBodyComposition("male", 30, 80, sf); err == nil {
		t.Fatalf("expected skinfold range error")
	}
	if _, err := utils.AssessBodyComposition("other", 30, 80, refSkinfolds); err == nil {
		t.Fatalf("expected gender error")
	}
}

func TestAssessBodyCompositionImplausible(t *testing.T) {
	t.Parallel()
	// very thin folds push density past 1.1
	thin := utils.Skinfolds{Biceps: 1, Triceps: 1, Subscapular: 1, Suprailiac: 1}
	if _, err := utils.AssessBodyComposition("male", 45, 70, thin); !errors.Is(err, utils.ErrImplausibleBodyFat) {
		t.Fatalf("expected implausible result error, got %v", err)
	}
}

func TestCalculateBMI(t *testing.T) {
	t.Parallel()
	bmi, err := utils.CalculateBMI(180, 75)
	if err != nil {
		t.Fatalf("bmi: %v", err)
	}
	if bmi != 23.15 {
		t.Fatalf("expected 23.15, got %.2f", bmi)
	}
	if c := utils.BMICategory(bmi); c != "Normal weight" {
		t.Fatalf("expected Normal weight, got %s", c)
	}
	if _, err := utils.CalculateBMI(20, 75); !errors.Is(err, utils.ErrBodyOutOfRange) {
		t.Fatalf("expected implausible height error, got %v", err)
	}
}

func TestBMICategoryBands(t *testing.T) {
	t.Parallel()
	cases := map[float64]string{
		18.49: "Underweight",
		18.5:  "Normal weight",
		29.99: "Overweight",
		34:    "Obesity class I",
		39.9:  "Obesity class II",
		40:    "Obesity class III",
	}
	for bmi, want := range cases {
		if got := utils.BMICategory(bmi); got != want {
			t.Fatalf("BMICategory(%.2f) = %s, want %s", bmi, got, want)
		}
	}
}

func TestCalculateAge(t *testing.T) {
	t.Parallel()
	bday := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := utils.CalculateAge(bday, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	if got := utils.CalculateAge(bday, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)); got != 34 {
		t.Fatalf("expected 34, got %d", got)
	}
}

func TestWeekRange(t *testing.T) {
	t.Parallel()
	// 2024-05-15 is a Wednesday
	start, end := utils.WeekRange(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC))
	if start != "2024-05-12" || end != "2024-05-18" {
		t.Fatalf("expected 2024-05-12..2024-05-18, got %s..%s", start, end)
	}
}
