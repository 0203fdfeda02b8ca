package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Weekdays lists the plan days in order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ParseWeekday normalizes a plan day name.
func ParseWeekday(s string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(s))
	for _, w := range Weekdays {
		if w == d {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: day %q", ErrInvalidKind, s)
}

// Workout is one exercise in the weekly plan.
type Workout struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	Day         string `json:"day"`
}

// WorkoutLog records that a user completed a workout on a day.
type WorkoutLog struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	WorkoutID     string    `json:"workoutId"`
	CompletedDate string    `json:"completedDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// WorkoutRepository is the port for the workout plan and completion log.
type WorkoutRepository interface {
	// ListWorkouts returns the plan for day, or the whole week when day is empty.
	ListWorkouts(ctx context.Context, day string) ([]Workout, error)
	GetWorkout(ctx context.Context, id string) (*Workout, error)
	LogCompletion(ctx context.Context, l WorkoutLog) (WorkoutLog, error)
	CountCompletions(ctx context.Context, userID string) (int, error)
	SeedWorkouts(ctx context.Context, ws []Workout) error
}

// DefaultWorkoutPlan is the plan installed into an empty store.
func DefaultWorkoutPlan() []Workout {
	return []Workout{
		{ID: "mon-pushups", Title: "Push-ups", Description: "Chest and triceps, keep the core tight.", Sets: 3, Reps: 15, Day: "monday"},
		{ID: "mon-squats", Title: "Squats", Description: "Bodyweight squats to parallel.", Sets: 3, Reps: 20, Day: "monday"},
		{ID: "tue-run", Title: "Easy run", Description: "Conversational pace, 3 km.", Sets: 1, Reps: 1, Day: "tuesday"},
		{ID: "wed-plank", Title: "Plank", Description: "Hold for 45 seconds.", Sets: 3, Reps: 1, Day: "wednesday"},
		{ID: "wed-lunges", Title: "Lunges", Description: "Alternate legs.", Sets: 3, Reps: 12, Day: "wednesday"},
		{ID: "thu-pushups", Title: "Incline push-ups", Description: "Hands on a bench.", Sets: 4, Reps: 12, Day: "thursday"},
		{ID: "fri-burpees", Title: "Burpees", Description: "Full range, steady rhythm.", Sets: 3, Reps: 10, Day: "friday"},
		{ID: "sat-run", Title: "Long run", Description: "Steady pace, 5 km.", Sets: 1, Reps: 1, Day: "saturday"},
		{ID: "sun-stretch", Title: "Mobility", Description: "Full-body stretching routine.", Sets: 1, Reps: 1, Day: "sunday"},
	}
}
