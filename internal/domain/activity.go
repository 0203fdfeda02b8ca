package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ActivityKind enumerates the daily activities a user logs.
type ActivityKind string

const (
	ActivityPushups         ActivityKind = "pushups"
	ActivityRunning         ActivityKind = "running"
	ActivityWater           ActivityKind = "water"
	ActivityWorkoutDuration ActivityKind = "workout_duration"
)

var activityUnits = map[ActivityKind]string{
	ActivityPushups:         "reps",
	ActivityRunning:         "km",
	ActivityWater:           "glasses",
	ActivityWorkoutDuration: "hours",
}

// ParseActivityKind validates s as an activity kind.
func ParseActivityKind(s string) (ActivityKind, error) {
	k := ActivityKind(strings.TrimSpace(s))
	if _, ok := activityUnits[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Unit returns the unit an activity is measured in.
func (k ActivityKind) Unit() string {
	return activityUnits[k]
}

// Activity is a single logged activity amount for a day.
type Activity struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Kind      ActivityKind `json:"activityType"`
	Value     float64      `json:"value"`
	Unit      string       `json:"unit"`
	Date      string       `json:"date"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ValidateActivity checks an activity amount.
func ValidateActivity(kind ActivityKind, value float64) error {
	if _, ok := activityUnits[kind]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if value <= 0 || value > 10000 {
		return fmt.Errorf("%w: value must be within (0, 10000]", ErrInvalidActivity)
	}
	return nil
}

// Goals are the daily targets the summary measures progress against.
type Goals struct {
	Pushups      int     `json:"pushups"`
	DistanceKm   float64 `json:"distanceKm"`
	WaterGlasses int     `json:"waterGlasses"`
}

// DefaultGoals returns the targets used when the user has not set any.
func DefaultGoals() Goals {
	return Goals{Pushups: 50, DistanceKm: 5, WaterGlasses: 8}
}

// ActivityFilter narrows an activity listing.
type ActivityFilter struct {
	UserID string
	Kind   ActivityKind
	Date   string
	Limit  int
}

// ActivityRepository is the port for activity persistence.
type ActivityRepository interface {
	AddActivity(ctx context.Context, a Activity) (Activity, error)
	ListActivities(ctx context.Context, f ActivityFilter) ([]Activity, error)
	ActivityTotalForDay(ctx context.Context, userID string, kind ActivityKind, day string) (float64, error)
	// ActiveDays returns the distinct days with any activity, newest first.
	ActiveDays(ctx context.Context, userID string) ([]string, error)
}
