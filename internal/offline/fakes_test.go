package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"fittrack/internal/domain"
)

var errNetwork = errors.New("connection refused")

// fakeRemote is an in-memory metric service that records every call.
type fakeRemote struct {
	mu      sync.Mutex
	records []domain.Metric
	creates []domain.Metric
	lists   int
	nextID  int

	// createFn, when set, decides the outcome of the n-th create (1-based).
	createFn func(n int, m domain.Metric) error
	listErr  error
	// gate, when set, blocks every create until it is closed.
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeRemote) CreateMetric(ctx context.Context, ownerID string, kind domain.MetricKind, value, unit string) (domain.Metric, error) {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return domain.Metric{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	m := domain.Metric{UserID: ownerID, Kind: kind, Value: value, Unit: unit}
	f.creates = append(f.creates, m)
	if f.createFn != nil {
		if err := f.createFn(len(f.creates), m); err != nil {
			return domain.Metric{}, err
		}
	}
	f.nextID++
	m.ID = fmt.Sprintf("srv-%d", f.nextID)
	m.Date = "2026-10-17"
	m.CreatedAt = time.Date(2026, 10, 17, 9, 0, f.nextID, 0, time.UTC)
	f.records = append(f.records, m)
	return m, nil
}

func (f *fakeRemote) ListMetrics(_ context.Context, ownerID string) ([]domain.Metric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Metric
	for _, m := range f.records {
		if m.UserID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRemote) createCalls() []domain.Metric {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Metric, len(f.creates))
	copy(out, f.creates)
	return out
}

func (f *fakeRemote) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	remote *fakeRemote
	kv     *MemoryKV
	queue  *LocalQueue
	probe  *ManualProbe
	coord  *Coordinator
}

func newHarness(reachable bool) *harness {
	h := &harness{
		remote: &fakeRemote{},
		kv:     NewMemoryKV(0),
		probe:  NewManualProbe(reachable),
	}
	h.queue = NewLocalQueue(h.kv, discardLogger())
	n := 0
	coord, err := NewCoordinator(Options{
		Remote: h.remote,
		Queue:  h.queue,
		Probe:  h.probe,
		Logger: discardLogger(),
		Now:    func() time.Time { return time.Date(2026, 10, 17, 8, 30, 0, 0, time.Local) },
		NewID: func() string {
			n++
			return fmt.Sprintf("local-%d", n)
		},
	})
	if err != nil {
		panic(err)
	}
	h.coord = coord
	return h
}
