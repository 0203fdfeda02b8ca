package offline

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// PollProbe checks the service health endpoint on a fixed interval.
type PollProbe struct {
	url      string
	client   *http.Client
	interval time.Duration
	logger   *slog.Logger

	reachable atomic.Bool
	subs      listeners
}

var _ Probe = (*PollProbe)(nil)

// NewPollProbe polls baseURL + "/api/health". A nil client gets a 5s timeout.
func NewPollProbe(baseURL string, interval time.Duration, client *http.Client, logger *slog.Logger) *PollProbe {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PollProbe{
		url:      strings.TrimRight(baseURL, "/") + "/api/health",
		client:   client,
		interval: interval,
		logger:   logger,
	}
}

// IsReachable reports the result of the last check.
func (p *PollProbe) IsReachable() bool { return p.reachable.Load() }

// OnBecameReachable registers fn.
func (p *PollProbe) OnBecameReachable(fn func()) func() { return p.subs.add(fn) }

// Check performs one health request and updates the state.
func (p *PollProbe) Check(ctx context.Context) bool {
	ok := p.ping(ctx)
	p.update(ok)
	return ok
}

// Run checks immediately and then every interval until ctx is done.
func (p *PollProbe) Run(ctx context.Context) {
	p.Check(ctx)
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Check(ctx)
		}
	}
}

func (p *PollProbe) ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (p *PollProbe) update(ok bool) {
	prev := p.reachable.Swap(ok)
	switch {
	case !prev && ok:
		p.logger.Info("connectivity restored", "url", p.url)
		p.subs.fire()
	case prev && !ok:
		p.logger.Warn("connectivity lost", "url", p.url)
	}
}
