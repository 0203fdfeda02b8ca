package offline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualProbe_FiresOnTransitionOnly(t *testing.T) {
	p := NewManualProbe(false)
	var order []string
	p.OnBecameReachable(func() { order = append(order, "a") })
	unsub := p.OnBecameReachable(func() { order = append(order, "b") })

	p.Set(false)
	assert.Empty(t, order)

	p.Set(true)
	assert.Equal(t, []string{"a", "b"}, order)

	p.Set(true)
	assert.Len(t, order, 2, "already reachable")

	unsub()
	unsub()
	p.Set(false)
	p.Set(true)
	assert.Equal(t, []string{"a", "b", "a"}, order)
}

func TestPollProbe_Check(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" || !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPollProbe(srv.URL+"/", time.Second, srv.Client(), discardLogger())
	var fired int
	p.OnBecameReachable(func() { fired++ })

	ctx := context.Background()
	assert.False(t, p.Check(ctx))
	assert.False(t, p.IsReachable())

	healthy.Store(true)
	assert.True(t, p.Check(ctx))
	assert.True(t, p.Check(ctx))
	assert.Equal(t, 1, fired)

	healthy.Store(false)
	assert.False(t, p.Check(ctx))
	healthy.Store(true)
	p.Check(ctx)
	assert.Equal(t, 2, fired)
}

func TestPollProbe_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewPollProbe(url, time.Second, nil, discardLogger())
	assert.False(t, p.Check(context.Background()))
}

func TestLiveProbe_TracksConnection(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		_ = c.Write(r.Context(), websocket.MessageText, []byte(`{"type":"heartbeat"}`))
		<-release
		c.Close(websocket.StatusNormalClosure, "bye")
	}))
	defer srv.Close()

	p := NewLiveProbe(srv.URL, 10*time.Millisecond, 20*time.Millisecond, discardLogger())
	require.Equal(t, "ws"+srv.URL[len("http"):]+"/api/live", p.url)

	reconnected := make(chan struct{}, 4)
	p.OnBecameReachable(func() { reconnected <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-reconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("probe never connected")
	}
	assert.True(t, p.IsReachable())

	close(release)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, p.IsReachable())
}

// liveServer accepts /api/live connections, counting dials, and heartbeats
// every interval. A zero interval stays silent.
func liveServer(t *testing.T, interval time.Duration, dials *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		dials.Add(1)
		ctx := c.CloseRead(r.Context())
		if interval == 0 {
			<-ctx.Done()
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := c.Write(ctx, websocket.MessageText, []byte(`{"type":"heartbeat"}`)); err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runProbe(t *testing.T, p *LiveProbe, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	p.Run(ctx)
}

func TestLiveProbe_IdleTimeout(t *testing.T) {
	t.Run("heartbeats inside the timeout keep one connection", func(t *testing.T) {
		var dials atomic.Int32
		srv := liveServer(t, 20*time.Millisecond, &dials)
		p := NewLiveProbe(srv.URL, 10*time.Millisecond, 20*time.Millisecond, discardLogger()).
			WithIdleTimeout(300 * time.Millisecond)
		var reconnects atomic.Int32
		p.OnBecameReachable(func() { reconnects.Add(1) })

		runProbe(t, p, 500*time.Millisecond)
		assert.Equal(t, int32(1), dials.Load())
		assert.Equal(t, int32(1), reconnects.Load())
	})

	t.Run("silent connection is redialed", func(t *testing.T) {
		var dials atomic.Int32
		srv := liveServer(t, 0, &dials)
		p := NewLiveProbe(srv.URL, 10*time.Millisecond, 20*time.Millisecond, discardLogger()).
			WithIdleTimeout(30 * time.Millisecond)

		runProbe(t, p, 500*time.Millisecond)
		assert.GreaterOrEqual(t, dials.Load(), int32(2))
	})

	t.Run("non-positive keeps the default", func(t *testing.T) {
		p := NewLiveProbe("http://localhost", 0, 0, nil).WithIdleTimeout(0)
		assert.Equal(t, DefaultLiveIdle, p.idle)
	})
}
