package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fittrack/internal/domain"
)

const metricColumns = "id, user_id, metric_type, value, unit, date, imported_from, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetric(row rowScanner) (domain.Metric, error) {
	var (
		m    domain.Metric
		kind string
		date time.Time
	)
	if err := row.Scan(&m.ID, &m.UserID, &kind, &m.Value, &m.Unit, &date, &m.ImportedFrom, &m.CreatedAt); err != nil {
		return domain.Metric{}, err
	}
	m.Kind = domain.MetricKind(kind)
	m.Date = dayString(date)
	return m, nil
}

// AddMetric inserts m under a new ID.
func (d *DB) AddMetric(ctx context.Context, m domain.Metric) (domain.Metric, error) {
	return scanMetric(d.sql.QueryRowContext(ctx,
		"INSERT INTO health_metrics ("+metricColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+metricColumns,
		uuid.NewString(), m.UserID, string(m.Kind), m.Value, m.Unit, m.Date, m.ImportedFrom, m.CreatedAt.UTC(),
	))
}

// AddMetrics inserts ms in one transaction.
func (d *DB) AddMetrics(ctx context.Context, ms []domain.Metric) ([]domain.Metric, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO health_metrics ("+metricColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+metricColumns)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	out := make([]domain.Metric, 0, len(ms))
	for _, m := range ms {
		saved, err := scanMetric(stmt.QueryRowContext(ctx,
			uuid.NewString(), m.UserID, string(m.Kind), m.Value, m.Unit, m.Date, m.ImportedFrom, m.CreatedAt.UTC()))
		if err != nil {
			return nil, fmt.Errorf("insert metric: %w", err)
		}
		out = append(out, saved)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMetrics returns the metrics matching f, newest day first unless
// f.Ascending is set.
func (d *DB) ListMetrics(ctx context.Context, f domain.MetricFilter) ([]domain.Metric, error) {
	where := []string{"user_id = $1"}
	args := []any{f.UserID}
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		where = append(where, fmt.Sprintf("metric_type = $%d", len(args)))
	}
	if f.Since != "" {
		args = append(args, f.Since)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	q := "SELECT " + metricColumns + " FROM health_metrics WHERE " + strings.Join(where, " AND ") +
		" ORDER BY date DESC, created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Ascending {
		q = "SELECT * FROM (" + q + ") t ORDER BY date ASC, created_at ASC"
	}

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Metric{}
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
