// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fittrack/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	metrics     []domain.Metric
	activities  []domain.Activity
	workouts    map[string]domain.Workout
	workoutLogs []domain.WorkoutLog
	profiles    map[string]domain.Profile
	shares      map[string]domain.Share
	users       []*domain.User
	sessions    map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		workouts: make(map[string]domain.Workout),
		profiles: make(map[string]domain.Profile),
		shares:   make(map[string]domain.Share),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.MetricRepository = (*DB)(nil)
var _ domain.ActivityRepository = (*DB)(nil)
var _ domain.WorkoutRepository = (*DB)(nil)
var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.ShareRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- MetricRepository ---

// AddMetric stores m under a new ID.
func (db *DB) AddMetric(ctx context.Context, m domain.Metric) (domain.Metric, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.addMetricLocked(m), nil
}

// AddMetrics stores ms, all or nothing.
func (db *DB) AddMetrics(ctx context.Context, ms []domain.Metric) ([]domain.Metric, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Metric, 0, len(ms))
	for _, m := range ms {
		out = append(out, db.addMetricLocked(m))
	}
	return out, nil
}

func (db *DB) addMetricLocked(m domain.Metric) domain.Metric {
	m.ID = uuid.NewString()
	m.TempID = ""
	m.Synced = false
	m.CreatedAt = m.CreatedAt.UTC()
	db.metrics = append(db.metrics, m)
	return m
}

// ListMetrics returns the metrics matching f, newest day first unless
// f.Ascending is set.
func (db *DB) ListMetrics(ctx context.Context, f domain.MetricFilter) ([]domain.Metric, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.Metric{}
	for _, m := range db.metrics {
		if m.UserID != f.UserID {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.Since != "" && m.Date < f.Since {
			continue
		}
		result = append(result, m)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	if f.Ascending {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result, nil
}

// --- ActivityRepository ---

// AddActivity stores a under a new ID.
func (db *DB) AddActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a.ID = uuid.NewString()
	a.CreatedAt = a.CreatedAt.UTC()
	db.activities = append(db.activities, a)
	return a, nil
}

// ListActivities returns the activities matching f, most recent first.
func (db *DB) ListActivities(ctx context.Context, f domain.ActivityFilter) ([]domain.Activity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.Activity{}
	for _, a := range db.activities {
		if a.UserID != f.UserID {
			continue
		}
		if f.Kind != "" && a.Kind != f.Kind {
			continue
		}
		if f.Date != "" && a.Date != f.Date {
			continue
		}
		result = append(result, a)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

// ActivityTotalForDay sums kind for userID on day.
func (db *DB) ActivityTotalForDay(ctx context.Context, userID string, kind domain.ActivityKind, day string) (float64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var total float64
	for _, a := range db.activities {
		if a.UserID == userID && a.Kind == kind && a.Date == day {
			total += a.Value
		}
	}
	return total, nil
}

// ActiveDays returns the distinct days userID logged any activity.
func (db *DB) ActiveDays(ctx context.Context, userID string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	seen := make(map[string]bool)
	days := []string{}
	for _, a := range db.activities {
		if a.UserID == userID && !seen[a.Date] {
			seen[a.Date] = true
			days = append(days, a.Date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days, nil
}

// --- WorkoutRepository ---

// ListWorkouts returns the plan for day, or all workouts when day is empty,
// ordered by weekday then title.
func (db *DB) ListWorkouts(ctx context.Context, day string) ([]domain.Workout, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	order := make(map[string]int, len(domain.Weekdays))
	for i, d := range domain.Weekdays {
		order[d] = i
	}
	result := []domain.Workout{}
	for _, w := range db.workouts {
		if day == "" || w.Day == day {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Day != result[j].Day {
			return order[result[i].Day] < order[result[j].Day]
		}
		return result[i].Title < result[j].Title
	})
	return result, nil
}

// GetWorkout returns the workout with id, or nil.
func (db *DB) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if w, ok := db.workouts[id]; ok {
		return &w, nil
	}
	return nil, nil
}

// LogCompletion records a completed workout.
func (db *DB) LogCompletion(ctx context.Context, l domain.WorkoutLog) (domain.WorkoutLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.workouts[l.WorkoutID]; !ok {
		return domain.WorkoutLog{}, domain.ErrNotFound
	}
	l.ID = uuid.NewString()
	l.CreatedAt = l.CreatedAt.UTC()
	db.workoutLogs = append(db.workoutLogs, l)
	return l, nil
}

// CountCompletions returns how many workouts userID has completed.
func (db *DB) CountCompletions(ctx context.Context, userID string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for _, l := range db.workoutLogs {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

// SeedWorkouts inserts ws, skipping IDs that already exist.
func (db *DB) SeedWorkouts(ctx context.Context, ws []domain.Workout) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, w := range ws {
		if _, ok := db.workouts[w.ID]; !ok {
			db.workouts[w.ID] = w
		}
	}
	return nil
}

// --- ProfileRepository ---

// GetProfile returns userID's profile, or nil.
func (db *DB) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if p, ok := db.profiles[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

// UpsertProfile stores p keyed by its ID.
func (db *DB) UpsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if p.ID == "" {
		return domain.Profile{}, errors.New("profile id is required")
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	db.profiles[p.ID] = p
	return p, nil
}

// --- ShareRepository ---

// CreateShare stores s. Codes must be unique.
func (db *DB) CreateShare(ctx context.Context, s domain.Share) (domain.Share, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.shares[s.Code]; ok {
		return domain.Share{}, fmt.Errorf("%w: share code %q", domain.ErrConflict, s.Code)
	}
	s.ID = uuid.NewString()
	s.Metrics = nil
	db.shares[s.Code] = s
	return s, nil
}

// GetShareByCode returns the share with code, or nil.
func (db *DB) GetShareByCode(ctx context.Context, code string) (*domain.Share, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s, ok := db.shares[code]; ok {
		return &s, nil
	}
	return nil, nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	// Return nil if not found
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, fmt.Errorf("%w: user %q", domain.ErrConflict, username)
		}
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
