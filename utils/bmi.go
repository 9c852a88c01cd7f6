package utils

import (
	"errors"
	"fmt"
)

var ErrBodyOutOfRange = errors.New("height or weight out of plausible range")

type bmiBand struct {
	below float64
	label string
}

// upper bounds, exclusive; the last band catches everything above
var bmiBands = []bmiBand{
	{18.5, "Underweight"},
	{25, "Normal weight"},
	{30, "Overweight"},
	{35, "Obesity class I"},
	{40, "Obesity class II"},
}

// CalculateBMI is kg / m², rounded to two decimals. Height is in centimetres.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, fmt.Errorf("%w: height %.1fcm weight %.1fkg", ErrBodyOutOfRange, heightCm, weightKg)
	}
	m := heightCm / 100
	return round2(weightKg / (m * m)), nil
}

func BMICategory(bmi float64) string {
	for _, b := range bmiBands {
		if bmi < b.below {
			return b.label
		}
	}
	return "Obesity class III"
}
