package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nutriportions/models"
)

type sentPush struct {
	userID uint
	title  string
}

type fakePusher struct {
	mu   sync.Mutex
	sent []sentPush
}

func (p *fakePusher) PushToUser(_ context.Context, userID uint, title, _ string, _ map[string]string) (int, error) {
	p.mu.Lock()
	p.sent = append(p.sent, sentPush{userID, title})
	p.mu.Unlock()
	return 1, nil
}

func (p *fakePusher) recipients(title string) []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []uint
	for _, s := range p.sent {
		if s.title == title {
			out = append(out, s.userID)
		}
	}
	return out
}

func TestSchedulerRunOnce(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := time.Date(2024, 5, 15, 20, 0, 0, 0, time.UTC)
	logs := newTestLogs(db, now)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	idle := createProfile(t, db, "idle@example.com")
	eater := createProfile(t, db, "eater@example.com")
	admin := createProfile(t, db, "coach@example.com")
	db.Model(admin).Update("role", models.RoleAdmin)
	for _, p := range []*models.Profile{idle, eater} {
		db.Model(p).Update("created_at", old)
	}

	f := createFood(t, db, chicken())
	items := NewDailyItemService(db, logs, nil)
	if _, err := items.AddFromFoodBank(eater.ID, AddFoodRequest{Date: "2024-05-15", MealCategory: models.MealLunch, FoodID: f.ID, Quantity: 3}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	inactiveOff := false
	notes := NewNotificationService(db)
	for _, in := range []NotificationTemplateInput{
		{Title: "reminder", Message: "log your meals", Trigger: models.TriggerTime, TriggerValue: "08:00,20:00"},
		{Title: "protein", Message: "protein goal reached", Trigger: models.TriggerGoalReached, TriggerValue: "protein"},
		{Title: "missed", Message: "calories short", Trigger: models.TriggerGoalMissed, TriggerValue: "calories@20:00"},
		{Title: "inactive", Message: "we miss you", Trigger: models.TriggerInactive, TriggerValue: "2"},
		{Title: "disabled", Message: "never", Trigger: models.TriggerInactive, TriggerValue: "1", IsActive: &inactiveOff},
	} {
		if _, err := notes.Create(in); err != nil {
			t.Fatalf("create template %s: %v", in.Title, err)
		}
	}

	pusher := &fakePusher{}
	s := NewScheduler(db, logs, pusher, time.Minute)
	n, err := s.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 deliveries, got %d: %+v", n, pusher.sent)
	}
	if got := pusher.recipients("reminder"); len(got) != 2 {
		t.Fatalf("reminder should reach both users, got %v", got)
	}
	if got := pusher.recipients("protein"); len(got) != 1 || got[0] != eater.ID {
		t.Fatalf("protein should reach only the eater, got %v", got)
	}
	if got := pusher.recipients("missed"); len(got) != 2 {
		t.Fatalf("missed should reach both users, got %v", got)
	}
	if got := pusher.recipients("inactive"); len(got) != 1 || got[0] != idle.ID {
		t.Fatalf("inactive should reach only the idle user, got %v", got)
	}
	if got := pusher.recipients("disabled"); len(got) != 0 {
		t.Fatalf("disabled template fired: %v", got)
	}

	n, err = s.RunOnce(context.Background(), now)
	if err != nil || n != 0 {
		t.Fatalf("expected a repeat run to send nothing, got %d, %v", n, err)
	}
	n, err = s.RunOnce(context.Background(), now.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("next morning run: %v", err)
	}
	if got := pusher.recipients("reminder"); len(got) != 4 {
		t.Fatalf("expected the 08:00 reminder next day, got %v", got)
	}
}

func TestSchedulerCatchesUpOnCoarseTicks(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	start := time.Date(2024, 5, 15, 7, 58, 30, 0, time.UTC)
	logs := newTestLogs(db, start)
	u := createProfile(t, db, "early@example.com")

	notes := NewNotificationService(db)
	for _, in := range []NotificationTemplateInput{
		{Title: "breakfast", Message: "log breakfast", Trigger: models.TriggerTime, TriggerValue: "08:00"},
		{Title: "evening", Message: "calories short", Trigger: models.TriggerGoalMissed, TriggerValue: "calories@20:00"},
	} {
		if _, err := notes.Create(in); err != nil {
			t.Fatalf("create template %s: %v", in.Title, err)
		}
	}

	pusher := &fakePusher{}
	s := NewScheduler(db, logs, pusher, 5*time.Minute)
	end := time.Date(2024, 5, 15, 23, 0, 0, 0, time.UTC)
	for now := start; !now.After(end); now = now.Add(5 * time.Minute) {
		if _, err := s.RunOnce(context.Background(), now); err != nil {
			t.Fatalf("run at %s: %v", now.Format("15:04:05"), err)
		}
	}
	if got := pusher.recipients("breakfast"); len(got) != 1 || got[0] != u.ID {
		t.Fatalf("expected one 08:00 delivery over the day, got %v", got)
	}
	if got := pusher.recipients("evening"); len(got) != 1 {
		t.Fatalf("expected one goal_missed delivery over the day, got %v", got)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := NewScheduler(db, newTestLogs(db, time.Now()), &fakePusher{}, time.Hour)
	s.Start()
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestValidateTrigger(t *testing.T) {
	t.Parallel()
	ok := [][2]string{
		{models.TriggerTime, "08:30"},
		{models.TriggerTime, "08:30, 21:00"},
		{models.TriggerGoalReached, "veg"},
		{models.TriggerGoalMissed, "fruit@19:00"},
		{models.TriggerInactive, ""},
		{models.TriggerInactive, "3"},
	}
	for _, c := range ok {
		if err := validateTrigger(c[0], c[1]); err != nil {
			t.Fatalf("%s %q: unexpected error %v", c[0], c[1], err)
		}
	}
	bad := [][2]string{
		{models.TriggerTime, ""},
		{models.TriggerTime, "25:00"},
		{models.TriggerGoalReached, "sugar"},
		{models.TriggerGoalMissed, "calories"},
		{models.TriggerInactive, "0"},
		{"weekly", "x"},
	}
	for _, c := range bad {
		if err := validateTrigger(c[0], c[1]); err == nil {
			t.Fatalf("%s %q: expected an error", c[0], c[1])
		}
	}
}
