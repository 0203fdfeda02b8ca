package domain

import (
	"context"
	"time"
)

const (
	// ShareCodePrefix starts every share code.
	ShareCodePrefix = "SHARE"
	// ShareTTL is how long a share code stays valid.
	ShareTTL = 48 * time.Hour
	// ShareWindowDays is how far back shared metrics reach.
	ShareWindowDays = 30
)

// Share grants read access to the sender's recent metrics via a code.
type Share struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName,omitempty"`
	RecipientEmail string    `json:"recipientEmail,omitempty"`
	Code           string    `json:"shareCode"`
	ExpiresAt      time.Time `json:"expiresAt"`
	CreatedAt      time.Time `json:"createdAt"`
	Metrics        []Metric  `json:"metrics,omitempty"`
}

// Expired reports whether the share is past its expiry at now.
func (s Share) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// ShareRepository is the port for share code persistence.
type ShareRepository interface {
	CreateShare(ctx context.Context, s Share) (Share, error)
	GetShareByCode(ctx context.Context, code string) (*Share, error)
}
