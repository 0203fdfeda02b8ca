package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fittrack/internal/domain"
)

// GetProfile returns userID's profile, or nil.
func (d *DB) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, email, full_name, avatar_url, height_cm, updated_at FROM profiles WHERE id = $1;", userID,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.HeightCM, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile inserts or replaces p.
func (d *DB) UpsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.UpdatedAt = p.UpdatedAt.UTC()
	_, err := d.sql.ExecContext(ctx, `INSERT INTO profiles (id, email, full_name, avatar_url, height_cm, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url, height_cm = EXCLUDED.height_cm, updated_at = EXCLUDED.updated_at;`,
		p.ID, p.Email, p.FullName, p.AvatarURL, p.HeightCM, p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}
