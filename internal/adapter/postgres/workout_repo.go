package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"fittrack/internal/domain"
)

const workoutColumns = "id, title, description, image_url, sets, reps, day"

// ListWorkouts returns the plan for day, or the whole week when day is empty.
func (d *DB) ListWorkouts(ctx context.Context, day string) ([]domain.Workout, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+workoutColumns+` FROM workouts WHERE ($1 = '' OR day = $1)
		ORDER BY array_position(ARRAY['monday','tuesday','wednesday','thursday','friday','saturday','sunday'], day), title;`,
		day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Workout{}
	for rows.Next() {
		var w domain.Workout
		if err := rows.Scan(&w.ID, &w.Title, &w.Description, &w.ImageURL, &w.Sets, &w.Reps, &w.Day); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWorkout returns the workout with id, or nil.
func (d *DB) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	var w domain.Workout
	err := d.sql.QueryRowContext(ctx, "SELECT "+workoutColumns+" FROM workouts WHERE id = $1;", id).
		Scan(&w.ID, &w.Title, &w.Description, &w.ImageURL, &w.Sets, &w.Reps, &w.Day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LogCompletion records a completed workout.
func (d *DB) LogCompletion(ctx context.Context, l domain.WorkoutLog) (domain.WorkoutLog, error) {
	l.ID = uuid.NewString()
	l.CreatedAt = l.CreatedAt.UTC()
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO workout_logs (id, user_id, workout_id, completed_date, created_at) VALUES ($1, $2, $3, $4, $5);",
		l.ID, l.UserID, l.WorkoutID, l.CompletedDate, l.CreatedAt)
	if err != nil {
		return domain.WorkoutLog{}, err
	}
	return l, nil
}

// CountCompletions returns how many workouts userID has completed.
func (d *DB) CountCompletions(ctx context.Context, userID string) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM workout_logs WHERE user_id = $1;", userID).Scan(&n)
	return n, err
}

// SeedWorkouts inserts ws, skipping IDs that already exist.
func (d *DB) SeedWorkouts(ctx context.Context, ws []domain.Workout) error {
	for _, w := range ws {
		_, err := d.sql.ExecContext(ctx,
			"INSERT INTO workouts ("+workoutColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING;",
			w.ID, w.Title, w.Description, w.ImageURL, w.Sets, w.Reps, w.Day)
		if err != nil {
			return err
		}
	}
	return nil
}
