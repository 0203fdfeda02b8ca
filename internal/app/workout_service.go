package app

import (
	"context"
	"time"

	"fittrack/internal/domain"
)

// WorkoutService serves the weekly plan and records completions.
type WorkoutService struct {
	repo domain.WorkoutRepository
	now  func() time.Time
}

// NewWorkoutService creates a WorkoutService backed by the given repository.
func NewWorkoutService(repo domain.WorkoutRepository) *WorkoutService {
	return &WorkoutService{repo: repo, now: time.Now}
}

// SeedDefaultPlan installs the default plan. Existing workouts are kept.
func (s *WorkoutService) SeedDefaultPlan(ctx context.Context) error {
	return s.repo.SeedWorkouts(ctx, domain.DefaultWorkoutPlan())
}

// List returns the workouts for day, or the whole week when day is empty.
func (s *WorkoutService) List(ctx context.Context, day string) ([]domain.Workout, error) {
	if day != "" {
		d, err := domain.ParseWeekday(day)
		if err != nil {
			return nil, err
		}
		day = d
	}
	return s.repo.ListWorkouts(ctx, day)
}

// Complete records that userID finished workoutID today.
func (s *WorkoutService) Complete(ctx context.Context, userID, workoutID string) (domain.WorkoutLog, error) {
	w, err := s.repo.GetWorkout(ctx, workoutID)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	if w == nil {
		return domain.WorkoutLog{}, domain.ErrNotFound
	}
	now := s.now()
	return s.repo.LogCompletion(ctx, domain.WorkoutLog{
		UserID:        userID,
		WorkoutID:     w.ID,
		CompletedDate: domain.Day(now),
		CreatedAt:     now.UTC(),
	})
}
