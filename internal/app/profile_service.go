package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fittrack/internal/domain"
)

// ProfileService manages user profiles and derived stats.
type ProfileService struct {
	profiles   domain.ProfileRepository
	users      domain.UserRepository
	activities domain.ActivityRepository
	workouts   domain.WorkoutRepository
	now        func() time.Time
}

// NewProfileService creates a ProfileService.
func NewProfileService(profiles domain.ProfileRepository, users domain.UserRepository, activities domain.ActivityRepository, workouts domain.WorkoutRepository) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		users:      users,
		activities: activities,
		workouts:   workouts,
		now:        time.Now,
	}
}

// Get returns userID's profile, creating an empty one on first access.
func (s *ProfileService) Get(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if p != nil {
		return *p, nil
	}

	np := domain.Profile{ID: userID, UpdatedAt: s.now().UTC()}
	if u, err := s.users.GetByID(ctx, userID); err == nil && u != nil {
		np.Email = u.Username
	}
	return s.profiles.UpsertProfile(ctx, np)
}

// Init creates userID's profile at registration, seeding the display name
// when one is given.
func (s *ProfileService) Init(ctx context.Context, userID, fullName string) (domain.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return s.Get(ctx, userID)
	}
	return s.Update(ctx, userID, domain.ProfileUpdate{FullName: &fullName})
}

// Update applies u to userID's profile.
func (s *ProfileService) Update(ctx context.Context, userID string, u domain.ProfileUpdate) (domain.Profile, error) {
	if u.HeightCM != nil && (*u.HeightCM <= 0 || *u.HeightCM > 300) {
		return domain.Profile{}, fmt.Errorf("%w: height must be within (0, 300] cm", domain.ErrInvalidMetric)
	}
	p, err := s.Get(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	p = u.Apply(p)
	p.UpdatedAt = s.now().UTC()
	return s.profiles.UpsertProfile(ctx, p)
}

// Stats summarizes userID's training history.
func (s *ProfileService) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	completed, err := s.workouts.CountCompletions(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	days, err := s.activities.ActiveDays(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	durations, err := s.activities.ListActivities(ctx, domain.ActivityFilter{UserID: userID, Kind: domain.ActivityWorkoutDuration})
	if err != nil {
		return domain.Stats{}, err
	}
	var hours float64
	for _, a := range durations {
		hours += a.Value
	}
	return domain.Stats{
		Workouts: completed,
		Streak:   domain.Streak(days),
		Hours:    hours,
		Days:     len(days),
		Level:    domain.LevelFor(completed),
	}, nil
}
