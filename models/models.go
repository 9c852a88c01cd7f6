package models

// All lists every table, in migration order.
func All() []any {
	return []any{
		&Profile{},
		&TargetTemplate{},
		&FoodBankItem{},
		&DailyLog{},
		&DailyItem{},
		&BodyMeasurement{},
		&WorkoutLog{},
		&Guide{},
		&MealPlanItem{},
		&PushToken{},
		&NotificationTemplate{},
		&NotificationDelivery{},
		&PhotoAnalysis{},
	}
}
