package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fittrack/internal/domain"
)

const activityColumns = "id, user_id, activity_type, value, unit, date, created_at"

func scanActivity(row rowScanner) (domain.Activity, error) {
	var (
		a    domain.Activity
		kind string
		date time.Time
	)
	if err := row.Scan(&a.ID, &a.UserID, &kind, &a.Value, &a.Unit, &date, &a.CreatedAt); err != nil {
		return domain.Activity{}, err
	}
	a.Kind = domain.ActivityKind(kind)
	a.Date = dayString(date)
	return a, nil
}

// AddActivity inserts a under a new ID.
func (d *DB) AddActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	return scanActivity(d.sql.QueryRowContext(ctx,
		"INSERT INTO activities ("+activityColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING "+activityColumns,
		uuid.NewString(), a.UserID, string(a.Kind), a.Value, a.Unit, a.Date, a.CreatedAt.UTC(),
	))
}

// ListActivities returns the activities matching f, most recent first.
func (d *DB) ListActivities(ctx context.Context, f domain.ActivityFilter) ([]domain.Activity, error) {
	where := []string{"user_id = $1"}
	args := []any{f.UserID}
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		where = append(where, fmt.Sprintf("activity_type = $%d", len(args)))
	}
	if f.Date != "" {
		args = append(args, f.Date)
		where = append(where, fmt.Sprintf("date = $%d", len(args)))
	}
	q := "SELECT " + activityColumns + " FROM activities WHERE " + strings.Join(where, " AND ") + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ActivityTotalForDay sums kind for userID on day.
func (d *DB) ActivityTotalForDay(ctx context.Context, userID string, kind domain.ActivityKind, day string) (float64, error) {
	var total float64
	err := d.sql.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(value), 0) FROM activities WHERE user_id = $1 AND activity_type = $2 AND date = $3;",
		userID, string(kind), day,
	).Scan(&total)
	return total, err
}

// ActiveDays returns the distinct days userID logged any activity, newest first.
func (d *DB) ActiveDays(ctx context.Context, userID string) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT DISTINCT date FROM activities WHERE user_id = $1 ORDER BY date DESC;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []string{}
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		days = append(days, dayString(t))
	}
	return days, rows.Err()
}
