package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fittrack/internal/domain"
)

// CreateShare stores s under a new ID. Codes are unique.
func (d *DB) CreateShare(ctx context.Context, s domain.Share) (domain.Share, error) {
	s.ID = uuid.NewString()
	s.Metrics = nil
	_, err := d.sql.ExecContext(ctx, `INSERT INTO metric_shares
		(id, sender_id, sender_name, recipient_email, share_code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		s.ID, s.SenderID, s.SenderName, s.RecipientEmail, s.Code, s.ExpiresAt.UTC(), s.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return domain.Share{}, fmt.Errorf("%w: share code %q", domain.ErrConflict, s.Code)
	}
	if err != nil {
		return domain.Share{}, err
	}
	return s, nil
}

// GetShareByCode returns the share with code, or nil.
func (d *DB) GetShareByCode(ctx context.Context, code string) (*domain.Share, error) {
	var s domain.Share
	err := d.sql.QueryRowContext(ctx, `SELECT id, sender_id, sender_name, recipient_email, share_code, expires_at, created_at
		FROM metric_shares WHERE share_code = $1;`, code,
	).Scan(&s.ID, &s.SenderID, &s.SenderName, &s.RecipientEmail, &s.Code, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
