package app_test

import (
	"context"
	"testing"

	"fittrack/internal/app"
	"fittrack/internal/domain"
)

func TestDailySummary_Progress(t *testing.T) {
	repo := &mockActivityRepo{
		totalFn: func(_ context.Context, _ string, kind domain.ActivityKind, _ string) (float64, error) {
			switch kind {
			case domain.ActivityPushups:
				return 25, nil
			case domain.ActivityRunning:
				return 7.5, nil
			default:
				return 2, nil
			}
		},
	}
	svc := app.NewSummaryService(repo, domain.Goals{})
	days, err := svc.DailySummary(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].Day >= days[2].Day {
		t.Errorf("expected oldest first, got %s then %s", days[0].Day, days[2].Day)
	}
	d := days[2]
	if d.Pushups.Percent != 50 || d.Pushups.Goal != 50 {
		t.Errorf("pushups %+v", d.Pushups)
	}
	if d.Distance.Percent != 100 {
		t.Errorf("distance should cap at 100, got %+v", d.Distance)
	}
	if d.Water.Percent != 25 {
		t.Errorf("water %+v", d.Water)
	}
}

func TestDailySummary_ClampsTo366(t *testing.T) {
	calls := 0
	repo := &mockActivityRepo{
		totalFn: func(context.Context, string, domain.ActivityKind, string) (float64, error) {
			calls++
			return 0, nil
		},
	}
	svc := app.NewSummaryService(repo, domain.Goals{Pushups: 10})
	days, err := svc.DailySummary(context.Background(), "u1", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != app.MaxSummaryDays {
		t.Errorf("expected %d days, got %d", app.MaxSummaryDays, len(days))
	}
	if calls != 3*app.MaxSummaryDays {
		t.Errorf("expected %d repo calls, got %d", 3*app.MaxSummaryDays, calls)
	}
	if svc.Goals().Pushups != 10 || svc.Goals().WaterGlasses != 8 {
		t.Errorf("unexpected goals %+v", svc.Goals())
	}
}
