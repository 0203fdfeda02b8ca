package domain

import (
	"context"
	"sort"
	"time"
)

// Profile holds the user-editable profile fields.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"fullName,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	HeightCM  float64   `json:"heightCm,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	FullName  *string  `json:"fullName,omitempty"`
	AvatarURL *string  `json:"avatarUrl,omitempty"`
	HeightCM  *float64 `json:"heightCm,omitempty"`
}

// Apply returns p with the non-nil fields of u applied.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.HeightCM != nil {
		p.HeightCM = *u.HeightCM
	}
	return p
}

// Stats summarizes a user's training history.
type Stats struct {
	Workouts int     `json:"workouts"`
	Streak   int     `json:"streak"`
	Hours    float64 `json:"hours"`
	Days     int     `json:"days"`
	Level    int     `json:"level"`
}

// LevelFor returns the level reached after completed workouts.
func LevelFor(completed int) int {
	return completed/10 + 1
}

// Streak counts consecutive calendar days ending at the most recent day in
// days. Duplicates and order do not matter; unparsable days are skipped.
func Streak(days []string) int {
	seen := make(map[string]struct{}, len(days))
	var ts []time.Time
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		t, err := time.Parse(DayLayout, d)
		if err != nil {
			continue
		}
		ts = append(ts, t)
	}
	if len(ts) == 0 {
		return 0
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].After(ts[j]) })

	streak := 1
	for i := 1; i < len(ts); i++ {
		if ts[i-1].Sub(ts[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

// ProfileRepository is the port for profile persistence.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, p Profile) (Profile, error)
}
