package app_test

import (
	"context"
	"errors"
	"testing"

	"fittrack/internal/app"
	"fittrack/internal/domain"
)

func TestProfileGet_CreatesOnFirstAccess(t *testing.T) {
	var upserted *domain.Profile
	profiles := &mockProfileRepo{
		upsertFn: func(_ context.Context, p domain.Profile) (domain.Profile, error) {
			upserted = &p
			return p, nil
		},
	}
	users := &stubUsers{byID: map[string]*domain.User{"u1": {ID: "u1", Username: "alice@example.com"}}}
	svc := app.NewProfileService(profiles, users, &mockActivityRepo{}, &mockWorkoutRepo{})

	p, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upserted == nil {
		t.Fatal("expected profile to be created")
	}
	if p.ID != "u1" || p.Email != "alice@example.com" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestProfileInit_SeedsName(t *testing.T) {
	var upserted []domain.Profile
	profiles := &mockProfileRepo{
		upsertFn: func(_ context.Context, p domain.Profile) (domain.Profile, error) {
			upserted = append(upserted, p)
			return p, nil
		},
	}
	users := &stubUsers{byID: map[string]*domain.User{"u1": {ID: "u1", Username: "alice@example.com"}}}
	svc := app.NewProfileService(profiles, users, &mockActivityRepo{}, &mockWorkoutRepo{})

	p, err := svc.Init(context.Background(), "u1", "  Alice Liddell ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FullName != "Alice Liddell" || p.Email != "alice@example.com" {
		t.Errorf("unexpected profile %+v", p)
	}

	upserted = nil
	p, err = svc.Init(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(upserted) != 1 || p.FullName != "" {
		t.Errorf("expected an empty profile to be created, got %+v", upserted)
	}
}

func TestProfileUpdate(t *testing.T) {
	profiles := &mockProfileRepo{
		getFn: func(_ context.Context, id string) (*domain.Profile, error) {
			return &domain.Profile{ID: id, FullName: "Old", HeightCM: 170}, nil
		},
	}
	svc := app.NewProfileService(profiles, &stubUsers{}, &mockActivityRepo{}, &mockWorkoutRepo{})

	name := "New Name"
	p, err := svc.Update(context.Background(), "u1", domain.ProfileUpdate{FullName: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FullName != "New Name" || p.HeightCM != 170 {
		t.Errorf("unexpected profile %+v", p)
	}

	bad := 0.0
	if _, err := svc.Update(context.Background(), "u1", domain.ProfileUpdate{HeightCM: &bad}); !errors.Is(err, domain.ErrInvalidMetric) {
		t.Errorf("expected ErrInvalidMetric, got %v", err)
	}
}

func TestProfileStats(t *testing.T) {
	activities := &mockActivityRepo{
		activeDaysFn: func(context.Context, string) ([]string, error) {
			return []string{"2026-10-17", "2026-10-16", "2026-10-14"}, nil
		},
		listFn: func(_ context.Context, f domain.ActivityFilter) ([]domain.Activity, error) {
			if f.Kind != domain.ActivityWorkoutDuration {
				t.Errorf("expected workout_duration filter, got %q", f.Kind)
			}
			return []domain.Activity{{Value: 1.5}, {Value: 0.5}}, nil
		},
	}
	workouts := &mockWorkoutRepo{
		countFn: func(context.Context, string) (int, error) { return 23, nil },
	}
	svc := app.NewProfileService(&mockProfileRepo{}, &stubUsers{}, activities, workouts)

	st, err := svc.Stats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Stats{Workouts: 23, Streak: 2, Hours: 2, Days: 3, Level: 3}
	if st != want {
		t.Errorf("expected %+v, got %+v", want, st)
	}
}
