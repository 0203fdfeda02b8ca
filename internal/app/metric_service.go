package app

import (
	"context"
	"time"

	"fittrack/internal/domain"
)

// DefaultHistoryLimit is the number of metrics History returns when no
// limit is given.
const DefaultHistoryLimit = 30

// MetricService encapsulates health metric use cases on the server.
type MetricService struct {
	repo domain.MetricRepository
	now  func() time.Time
}

// NewMetricService creates a MetricService backed by the given repository.
func NewMetricService(repo domain.MetricRepository) *MetricService {
	return &MetricService{repo: repo, now: time.Now}
}

// Record validates and stores a metric dated today. An empty unit takes the
// kind's default.
func (s *MetricService) Record(ctx context.Context, userID string, kind domain.MetricKind, value, unit string) (domain.Metric, error) {
	unit, err := domain.NormalizeMetric(userID, kind, value, unit)
	if err != nil {
		return domain.Metric{}, err
	}
	now := s.now()
	return s.repo.AddMetric(ctx, domain.Metric{
		UserID:    userID,
		Kind:      kind,
		Value:     value,
		Unit:      unit,
		Date:      domain.Day(now),
		CreatedAt: now.UTC(),
	})
}

// List returns userID's metrics newest first, optionally of one kind.
func (s *MetricService) List(ctx context.Context, userID string, kind domain.MetricKind) ([]domain.Metric, error) {
	if kind != "" && !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	return s.repo.ListMetrics(ctx, domain.MetricFilter{UserID: userID, Kind: kind})
}

// History returns the latest limit metrics of kind in date order, oldest
// first. Weights are converted to unit when it is "kg" or "lb".
func (s *MetricService) History(ctx context.Context, userID string, kind domain.MetricKind, limit int, unit string) ([]domain.Metric, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	ms, err := s.repo.ListMetrics(ctx, domain.MetricFilter{UserID: userID, Kind: kind, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Metric, len(ms))
	for i, m := range ms {
		if unit != "" {
			m = domain.ConvertWeightMetric(m, unit)
		}
		out[len(ms)-1-i] = m
	}
	return out, nil
}
