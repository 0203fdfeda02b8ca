package app_test

import (
	"context"

	"fittrack/internal/domain"
)

type mockMetricRepo struct {
	addFn     func(ctx context.Context, m domain.Metric) (domain.Metric, error)
	addManyFn func(ctx context.Context, ms []domain.Metric) ([]domain.Metric, error)
	listFn    func(ctx context.Context, f domain.MetricFilter) ([]domain.Metric, error)
}

func (m *mockMetricRepo) AddMetric(ctx context.Context, metric domain.Metric) (domain.Metric, error) {
	if m.addFn != nil {
		return m.addFn(ctx, metric)
	}
	metric.ID = "m1"
	return metric, nil
}

func (m *mockMetricRepo) AddMetrics(ctx context.Context, ms []domain.Metric) ([]domain.Metric, error) {
	if m.addManyFn != nil {
		return m.addManyFn(ctx, ms)
	}
	return ms, nil
}

func (m *mockMetricRepo) ListMetrics(ctx context.Context, f domain.MetricFilter) ([]domain.Metric, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, nil
}

type mockActivityRepo struct {
	addFn        func(ctx context.Context, a domain.Activity) (domain.Activity, error)
	listFn       func(ctx context.Context, f domain.ActivityFilter) ([]domain.Activity, error)
	totalFn      func(ctx context.Context, userID string, kind domain.ActivityKind, day string) (float64, error)
	activeDaysFn func(ctx context.Context, userID string) ([]string, error)
}

func (m *mockActivityRepo) AddActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	if m.addFn != nil {
		return m.addFn(ctx, a)
	}
	a.ID = "a1"
	return a, nil
}

func (m *mockActivityRepo) ListActivities(ctx context.Context, f domain.ActivityFilter) ([]domain.Activity, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, nil
}

func (m *mockActivityRepo) ActivityTotalForDay(ctx context.Context, userID string, kind domain.ActivityKind, day string) (float64, error) {
	if m.totalFn != nil {
		return m.totalFn(ctx, userID, kind, day)
	}
	return 0, nil
}

func (m *mockActivityRepo) ActiveDays(ctx context.Context, userID string) ([]string, error) {
	if m.activeDaysFn != nil {
		return m.activeDaysFn(ctx, userID)
	}
	return nil, nil
}

type mockWorkoutRepo struct {
	listFn  func(ctx context.Context, day string) ([]domain.Workout, error)
	getFn   func(ctx context.Context, id string) (*domain.Workout, error)
	logFn   func(ctx context.Context, l domain.WorkoutLog) (domain.WorkoutLog, error)
	countFn func(ctx context.Context, userID string) (int, error)
	seedFn  func(ctx context.Context, ws []domain.Workout) error
}

func (m *mockWorkoutRepo) ListWorkouts(ctx context.Context, day string) ([]domain.Workout, error) {
	if m.listFn != nil {
		return m.listFn(ctx, day)
	}
	return nil, nil
}

func (m *mockWorkoutRepo) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockWorkoutRepo) LogCompletion(ctx context.Context, l domain.WorkoutLog) (domain.WorkoutLog, error) {
	if m.logFn != nil {
		return m.logFn(ctx, l)
	}
	l.ID = "l1"
	return l, nil
}

func (m *mockWorkoutRepo) CountCompletions(ctx context.Context, userID string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockWorkoutRepo) SeedWorkouts(ctx context.Context, ws []domain.Workout) error {
	if m.seedFn != nil {
		return m.seedFn(ctx, ws)
	}
	return nil
}

type mockProfileRepo struct {
	getFn    func(ctx context.Context, userID string) (*domain.Profile, error)
	upsertFn func(ctx context.Context, p domain.Profile) (domain.Profile, error)
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileRepo) UpsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, p)
	}
	return p, nil
}

type mockShareRepo struct {
	createFn func(ctx context.Context, s domain.Share) (domain.Share, error)
	getFn    func(ctx context.Context, code string) (*domain.Share, error)
}

func (m *mockShareRepo) CreateShare(ctx context.Context, s domain.Share) (domain.Share, error) {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.ID = "s1"
	return s, nil
}

func (m *mockShareRepo) GetShareByCode(ctx context.Context, code string) (*domain.Share, error) {
	if m.getFn != nil {
		return m.getFn(ctx, code)
	}
	return nil, nil
}

type stubUsers struct {
	byID map[string]*domain.User
}

func (s *stubUsers) GetByUsername(context.Context, string) (*domain.User, error) { return nil, nil }
func (s *stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return s.byID[id], nil
}
func (s *stubUsers) Create(context.Context, string, string) (*domain.User, error) { return nil, nil }
func (s *stubUsers) Count(context.Context) (int, error)                         { return len(s.byID), nil }
