package app

import (
	"context"
	"time"

	"fittrack/internal/domain"
)

// DefaultActivityHistory is the number of entries ActivityHistory returns
// when no limit is given.
const DefaultActivityHistory = 7

// ActivityService encapsulates daily activity logging.
type ActivityService struct {
	repo domain.ActivityRepository
	now  func() time.Time
}

// NewActivityService creates an ActivityService backed by the given repository.
func NewActivityService(repo domain.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo, now: time.Now}
}

// Log validates and stores an activity for today.
func (s *ActivityService) Log(ctx context.Context, userID string, kind domain.ActivityKind, value float64) (domain.Activity, error) {
	if err := domain.ValidateActivity(kind, value); err != nil {
		return domain.Activity{}, err
	}
	now := s.now()
	return s.repo.AddActivity(ctx, domain.Activity{
		UserID:    userID,
		Kind:      kind,
		Value:     value,
		Unit:      kind.Unit(),
		Date:      domain.Day(now),
		CreatedAt: now.UTC(),
	})
}

// ForDay returns the activities logged on day, today when empty.
func (s *ActivityService) ForDay(ctx context.Context, userID, day string) ([]domain.Activity, error) {
	if day == "" {
		day = domain.Day(s.now())
	} else if _, err := domain.ParseDay(day); err != nil {
		return nil, domain.ErrInvalidActivity
	}
	return s.repo.ListActivities(ctx, domain.ActivityFilter{UserID: userID, Date: day})
}

// History returns the most recent entries of kind, newest first.
func (s *ActivityService) History(ctx context.Context, userID string, kind domain.ActivityKind, limit int) ([]domain.Activity, error) {
	if kind.Unit() == "" {
		return nil, domain.ErrInvalidKind
	}
	if limit <= 0 {
		limit = DefaultActivityHistory
	}
	return s.repo.ListActivities(ctx, domain.ActivityFilter{UserID: userID, Kind: kind, Limit: limit})
}
