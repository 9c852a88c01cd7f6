package services

import (
	"context"
	"strconv"
	"time"

	"nutriportions/models"
	"nutriportions/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/tomb.v2"
	"gorm.io/gorm"
)

// Pusher delivers a notification to every device of a user.
type Pusher interface {
	PushToUser(ctx context.Context, userID uint, title, body string, data map[string]string) (int, error)
}

// Scheduler evaluates active notification templates on every tick.
type Scheduler struct {
	tomb.Tomb

	db       *gorm.DB
	logs     *DailyLogService
	push     Pusher
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewScheduler(db *gorm.DB, logs *DailyLogService, push Pusher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		db:       db,
		logs:     logs,
		push:     push,
		interval: interval,
		now:      time.Now,
		log:      log.With().Str(utils.PACKAGE, "services").Str("svc", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() {
	s.Go(func() error {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.Dying():
				return nil
			case <-ticker.C:
				if n, err := s.RunOnce(s.Context(nil), s.now()); err != nil {
					s.log.Error().Err(err).Msg("notification run failed")
				} else if n > 0 {
					s.log.Info().Str(utils.EVENT, "notifications_sent").Int("count", n).Send()
				}
			}
		}
	})
}

func (s *Scheduler) Stop() error {
	s.Kill(nil)
	return s.Wait()
}

// runState caches what a single run needs to look up at most once.
type runState struct {
	today  string
	clock  string
	now    time.Time
	users  []models.Profile
	totals map[uint]utils.Portions
}

// RunOnce evaluates every active template at now and returns how many
// notifications it delivered.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) (int, error) {
	var templates []models.NotificationTemplate
	if err := s.db.Where("is_active = ?", true).Order("id").Find(&templates).Error; err != nil {
		return 0, err
	}
	if len(templates) == 0 {
		return 0, nil
	}
	local := now.In(s.logs.loc)
	st := &runState{today: local.Format(utils.DateLayout), clock: local.Format("15:04"), now: now}
	if err := s.db.Where("role = ?", models.RoleUser).Order("id").Find(&st.users).Error; err != nil {
		return 0, err
	}

	sent := 0
	for _, t := range templates {
		recipients, slot, err := s.evaluate(st, t)
		if err != nil {
			s.log.Warn().Err(err).Uint(utils.ID, t.ID).Msg("skipping template")
			continue
		}
		for _, uid := range recipients {
			ok, err := s.claim(t.ID, uid, slot)
			if err != nil {
				return sent, err
			}
			if !ok {
				continue
			}
			data := map[string]string{"template_id": strconv.FormatUint(uint64(t.ID), 10), "trigger": t.Trigger}
			if _, err := s.push.PushToUser(ctx, uid, t.Title, t.Message, data); err != nil {
				s.log.Warn().Err(err).Uint(utils.USER, uid).Msg("push failed")
				continue
			}
			sent++
		}
	}
	return sent, nil
}

// claim records a delivery and reports whether it is new.
func (s *Scheduler) claim(templateID, userID uint, slot string) (bool, error) {
	d := models.NotificationDelivery{TemplateID: templateID, UserID: userID, Slot: slot}
	res := s.db.Where(models.NotificationDelivery{TemplateID: templateID, UserID: userID, Slot: slot}).FirstOrCreate(&d)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Scheduler) dayTotals(st *runState) (map[uint]utils.Portions, error) {
	if st.totals == nil {
		t, err := s.logs.TotalsForDate(st.today)
		if err != nil {
			return nil, err
		}
		st.totals = t
	}
	return st.totals, nil
}

func goalFor(p *models.Profile, key string) float64 {
	switch key {
	case "calories":
		return p.KcalGoal
	case "protein":
		return p.ProteinUnits
	case "carb":
		return p.CarbUnits
	case "fat":
		return p.FatUnits
	case "veg":
		return p.VegUnits
	case "fruit":
		return p.FruitUnits
	}
	return 0
}

func consumedFor(t utils.Portions, key string) float64 {
	switch key {
	case "calories":
		return t.Kcal
	case "protein":
		return t.Protein
	case "carb":
		return t.Carb
	case "fat":
		return t.Fat
	case "veg":
		return t.Veg
	case "fruit":
		return t.Fruit
	}
	return 0
}

func (s *Scheduler) evaluate(st *runState, t models.NotificationTemplate) ([]uint, string, error) {
	var out []uint
	switch t.Trigger {
	case models.TriggerTime:
		times, err := parseTimes(t.TriggerValue)
		if err != nil {
			return nil, "", err
		}
		// the latest time already passed today names the slot, so a late or
		// skipped tick still delivers once
		slot := ""
		for _, c := range times {
			if c <= st.clock && c > slot {
				slot = c
			}
		}
		if slot == "" {
			return nil, "", nil
		}
		for _, u := range st.users {
			out = append(out, u.ID)
		}
		return out, st.today + "T" + slot, nil

	case models.TriggerGoalReached, models.TriggerGoalMissed:
		key := t.TriggerValue
		reached := t.Trigger == models.TriggerGoalReached
		if !reached {
			goal, at, err := parseMissed(t.TriggerValue)
			if err != nil {
				return nil, "", err
			}
			if st.clock < at {
				return nil, "", nil
			}
			key = goal
		}
		totals, err := s.dayTotals(st)
		if err != nil {
			return nil, "", err
		}
		for i := range st.users {
			u := &st.users[i]
			g := goalFor(u, key)
			if g <= 0 {
				continue
			}
			have := consumedFor(totals[u.ID], key)
			if (reached && have >= g) || (!reached && have < g) {
				out = append(out, u.ID)
			}
		}
		return out, st.today, nil

	case models.TriggerInactive:
		days, err := parseInactiveDays(t.TriggerValue)
		if err != nil {
			return nil, "", err
		}
		since := st.now.Add(-time.Duration(days) * 24 * time.Hour)
		var active []uint
		if err := s.db.Model(&models.DailyItem{}).Where("created_at >= ?", since).Distinct().Pluck("user_id", &active).Error; err != nil {
			return nil, "", err
		}
		seen := make(map[uint]bool, len(active))
		for _, id := range active {
			seen[id] = true
		}
		for _, u := range st.users {
			if !seen[u.ID] && u.CreatedAt.Before(since) {
				out = append(out, u.ID)
			}
		}
		return out, st.today, nil
	}
	return nil, "", nil
}
