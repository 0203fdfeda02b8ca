package offline

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// DefaultLiveIdle is how long a live connection may stay silent before it
// is treated as dead. Servers must heartbeat well inside it.
const DefaultLiveIdle = 30 * time.Second

// LiveProbe keeps a WebSocket open to the service's live endpoint. The
// service is reachable while the connection is up. Dropped connections are
// redialed with exponential backoff.
type LiveProbe struct {
	url        string
	backoffMin time.Duration
	backoffMax time.Duration
	idle       time.Duration
	logger     *slog.Logger

	reachable atomic.Bool
	subs      listeners
}

var _ Probe = (*LiveProbe)(nil)

// NewLiveProbe dials baseURL's /api/live endpoint (http/https are mapped to
// ws/wss). A connection silent for DefaultLiveIdle is considered dead; see
// WithIdleTimeout.
func NewLiveProbe(baseURL string, backoffMin, backoffMax time.Duration, logger *slog.Logger) *LiveProbe {
	u := strings.TrimRight(baseURL, "/") + "/api/live"
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if backoffMin <= 0 {
		backoffMin = time.Second
	}
	if backoffMax < backoffMin {
		backoffMax = backoffMin
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveProbe{
		url:        u,
		backoffMin: backoffMin,
		backoffMax: backoffMax,
		idle:       DefaultLiveIdle,
		logger:     logger,
	}
}

// WithIdleTimeout sets how long a connection may go without a heartbeat.
// Non-positive values keep the current timeout. Call it before Run.
func (p *LiveProbe) WithIdleTimeout(d time.Duration) *LiveProbe {
	if d > 0 {
		p.idle = d
	}
	return p
}

// IsReachable reports whether the live connection is up.
func (p *LiveProbe) IsReachable() bool { return p.reachable.Load() }

// OnBecameReachable registers fn.
func (p *LiveProbe) OnBecameReachable(fn func()) func() { return p.subs.add(fn) }

// Run maintains the connection until ctx is done.
func (p *LiveProbe) Run(ctx context.Context) {
	backoff := p.backoffMin
	for ctx.Err() == nil {
		conn, _, err := websocket.Dial(ctx, p.url, nil)
		if err != nil {
			p.set(false)
			p.logger.Debug("live dial failed", "url", p.url, "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > p.backoffMax {
				backoff = p.backoffMax
			}
			continue
		}

		backoff = p.backoffMin
		p.set(true)
		err = p.hold(ctx, conn)
		p.set(false)
		_ = conn.CloseNow()
		if ctx.Err() == nil {
			p.logger.Debug("live connection closed", "error", err)
		}
	}
}

// hold reads heartbeats until the connection fails or goes quiet.
func (p *LiveProbe) hold(ctx context.Context, conn *websocket.Conn) error {
	for {
		readCtx, cancel := context.WithTimeout(ctx, p.idle)
		_, _, err := conn.Read(readCtx)
		cancel()
		if err != nil {
			return err
		}
	}
}

func (p *LiveProbe) set(ok bool) {
	prev := p.reachable.Swap(ok)
	switch {
	case !prev && ok:
		p.logger.Info("connectivity restored", "url", p.url)
		p.subs.fire()
	case prev && !ok:
		p.logger.Warn("connectivity lost", "url", p.url)
	}
}
