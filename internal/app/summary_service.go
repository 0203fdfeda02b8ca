package app

import (
	"context"
	"math"
	"time"

	"fittrack/internal/domain"
)

// MaxSummaryDays caps how far back DailySummary reaches.
const MaxSummaryDays = 366

// SummaryService computes per-day activity totals against goals.
type SummaryService struct {
	repo  domain.ActivityRepository
	goals domain.Goals
	now   func() time.Time
}

// NewSummaryService creates a SummaryService. Zero goal fields fall back to
// domain.DefaultGoals.
func NewSummaryService(repo domain.ActivityRepository, goals domain.Goals) *SummaryService {
	def := domain.DefaultGoals()
	if goals.Pushups <= 0 {
		goals.Pushups = def.Pushups
	}
	if goals.DistanceKm <= 0 {
		goals.DistanceKm = def.DistanceKm
	}
	if goals.WaterGlasses <= 0 {
		goals.WaterGlasses = def.WaterGlasses
	}
	return &SummaryService{repo: repo, goals: goals, now: time.Now}
}

// Goals returns the goals summaries are measured against.
func (s *SummaryService) Goals() domain.Goals { return s.goals }

// Progress is one activity's total and its share of the goal in percent,
// capped at 100.
type Progress struct {
	Total   float64 `json:"total"`
	Goal    float64 `json:"goal"`
	Percent int     `json:"percent"`
}

// DaySummary is a single day returned by DailySummary.
type DaySummary struct {
	Day      string   `json:"day"`
	Pushups  Progress `json:"pushups"`
	Distance Progress `json:"distanceKm"`
	Water    Progress `json:"waterGlasses"`
}

// DailySummary returns the last days days, oldest first, ending today.
func (s *SummaryService) DailySummary(ctx context.Context, userID string, days int) ([]DaySummary, error) {
	if days <= 0 {
		days = 1
	}
	if days > MaxSummaryDays {
		days = MaxSummaryDays
	}

	today := s.now().In(time.Local)
	out := make([]DaySummary, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := domain.Day(today.AddDate(0, 0, -i))

		pushups, err := s.repo.ActivityTotalForDay(ctx, userID, domain.ActivityPushups, day)
		if err != nil {
			return nil, err
		}
		km, err := s.repo.ActivityTotalForDay(ctx, userID, domain.ActivityRunning, day)
		if err != nil {
			return nil, err
		}
		water, err := s.repo.ActivityTotalForDay(ctx, userID, domain.ActivityWater, day)
		if err != nil {
			return nil, err
		}

		out = append(out, DaySummary{
			Day:      day,
			Pushups:  progress(pushups, float64(s.goals.Pushups)),
			Distance: progress(km, s.goals.DistanceKm),
			Water:    progress(water, float64(s.goals.WaterGlasses)),
		})
	}
	return out, nil
}

func progress(total, goal float64) Progress {
	p := Progress{Total: total, Goal: goal}
	if goal > 0 {
		p.Percent = int(math.Min(100, math.Round(total/goal*100)))
	}
	return p
}
