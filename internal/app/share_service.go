package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"fittrack/internal/domain"
)

const shareAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ShareService lets a user hand a snapshot of recent metrics to someone else.
type ShareService struct {
	shares   domain.ShareRepository
	metrics  domain.MetricRepository
	profiles domain.ProfileRepository
	now      func() time.Time
}

// NewShareService creates a ShareService.
func NewShareService(shares domain.ShareRepository, metrics domain.MetricRepository, profiles domain.ProfileRepository) *ShareService {
	return &ShareService{shares: shares, metrics: metrics, profiles: profiles, now: time.Now}
}

// Create issues a new share code for senderID valid for domain.ShareTTL.
func (s *ShareService) Create(ctx context.Context, senderID, recipientEmail string) (domain.Share, error) {
	code, err := newShareCode(rand.Reader)
	if err != nil {
		return domain.Share{}, err
	}
	now := s.now().UTC()
	sh := domain.Share{
		SenderID:       senderID,
		RecipientEmail: strings.TrimSpace(recipientEmail),
		Code:           code,
		ExpiresAt:      now.Add(domain.ShareTTL),
		CreatedAt:      now,
	}
	if p, err := s.profiles.GetProfile(ctx, senderID); err == nil && p != nil {
		sh.SenderName = p.FullName
	}
	return s.shares.CreateShare(ctx, sh)
}

// Get resolves code and attaches the sender's metrics from the last
// domain.ShareWindowDays days.
func (s *ShareService) Get(ctx context.Context, code string) (domain.Share, error) {
	sh, err := s.shares.GetShareByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return domain.Share{}, err
	}
	if sh == nil {
		return domain.Share{}, domain.ErrNotFound
	}
	now := s.now()
	if sh.Expired(now) {
		return domain.Share{}, domain.ErrShareExpired
	}
	since := domain.Day(now.AddDate(0, 0, -domain.ShareWindowDays))
	ms, err := s.metrics.ListMetrics(ctx, domain.MetricFilter{UserID: sh.SenderID, Since: since})
	if err != nil {
		return domain.Share{}, err
	}
	sh.Metrics = ms
	return *sh, nil
}

// Import copies the shared metrics into recipientID's log. Dates are kept;
// each copy records the share code it came from.
func (s *ShareService) Import(ctx context.Context, recipientID, code string) ([]domain.Metric, error) {
	sh, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if sh.SenderID == recipientID {
		return nil, fmt.Errorf("%w: cannot import your own share", domain.ErrInvalidMetric)
	}
	now := s.now().UTC()
	copies := make([]domain.Metric, 0, len(sh.Metrics))
	for _, m := range sh.Metrics {
		copies = append(copies, domain.Metric{
			UserID:       recipientID,
			Kind:         m.Kind,
			Value:        m.Value,
			Unit:         m.Unit,
			Date:         m.Date,
			CreatedAt:    now,
			ImportedFrom: sh.Code,
		})
	}
	if len(copies) == 0 {
		return copies, nil
	}
	return s.metrics.AddMetrics(ctx, copies)
}

// newShareCode draws six characters from r, discarding bytes at or above the
// largest multiple of the alphabet size so every character is equally likely.
func newShareCode(r io.Reader) (string, error) {
	const (
		codeLen = 6
		limit   = 256 - 256%len(shareAlphabet)
	)
	code := make([]byte, 0, codeLen)
	buf := make([]byte, 16)
	for len(code) < codeLen {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, c := range buf {
			if int(c) >= limit {
				continue
			}
			code = append(code, shareAlphabet[int(c)%len(shareAlphabet)])
			if len(code) == codeLen {
				break
			}
		}
	}
	return domain.ShareCodePrefix + string(code), nil
}
