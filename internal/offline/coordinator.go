package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fittrack/internal/domain"
)

// RemoteMetrics is the remote metric service the coordinator writes through to.
type RemoteMetrics interface {
	CreateMetric(ctx context.Context, ownerID string, kind domain.MetricKind, value, unit string) (domain.Metric, error)
	ListMetrics(ctx context.Context, ownerID string) ([]domain.Metric, error)
}

// Source tells where a read was served from.
type Source int

const (
	SourceRemote Source = iota
	SourceSnapshot
)

func (s Source) String() string {
	if s == SourceRemote {
		return "remote"
	}
	return "snapshot"
}

// ReadResult is the outcome of ReadMetrics.
type ReadResult struct {
	Metrics []domain.Metric
	Source  Source
}

// Status is the advisory connectivity indicator shown to the user.
type Status int

const (
	StatusOffline Status = iota
	StatusSyncing
	StatusOnline
)

func (s Status) String() string {
	switch s {
	case StatusSyncing:
		return "syncing"
	case StatusOnline:
		return "online"
	default:
		return "offline"
	}
}

// Options configures a Coordinator. Remote, Queue and Probe are required.
type Options struct {
	Remote RemoteMetrics
	Queue  *LocalQueue
	Probe  Probe
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID generates temporary IDs for queued records.
	NewID func() string
}

// Coordinator is the single read and write entry point for health metrics.
// It writes through to the remote service when reachable and falls back to
// the local queue otherwise. Each call makes at most one remote attempt.
type Coordinator struct {
	remote RemoteMetrics
	queue  *LocalQueue
	probe  Probe
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	state  *SyncState
}

// NewCoordinator validates opts and returns a Coordinator.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Remote == nil {
		return nil, fmt.Errorf("remote cannot be nil")
	}
	if opts.Queue == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}
	if opts.Probe == nil {
		return nil, fmt.Errorf("probe cannot be nil")
	}
	c := &Coordinator{
		remote: opts.Remote,
		queue:  opts.Queue,
		probe:  opts.Probe,
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
		state:  NewSyncState(),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = func() string { return "local-" + uuid.NewString() }
	}
	return c, nil
}

// ReadMetrics returns the owner's confirmed metrics. When the service is
// reachable the result is fetched and replaces the local snapshot; otherwise,
// or if the fetch fails, the snapshot filtered to ownerID is returned.
// Queued writes are never included.
func (c *Coordinator) ReadMetrics(ctx context.Context, ownerID string) ReadResult {
	if c.probe.IsReachable() {
		ms, err := c.remote.ListMetrics(ctx, ownerID)
		if err == nil {
			ms = confirmed(ms)
			_ = c.queue.Write(SnapshotCollection, ms)
			return ReadResult{Metrics: ms, Source: SourceRemote}
		}
		c.logger.Warn("remote read failed, serving snapshot", "owner", ownerID, "error", err)
	}
	return ReadResult{
		Metrics: filterOwner(c.queue.Read(SnapshotCollection), ownerID, false),
		Source:  SourceSnapshot,
	}
}

// WriteMetric records a metric. When the remote write succeeds the confirmed
// record is appended to the snapshot and returned. When the service is
// unreachable or the write fails in transit, a provisional record with a
// temporary ID and Synced=false is queued and returned with a nil error.
// Invalid input and writes rejected by the service return an error and are
// not queued.
func (c *Coordinator) WriteMetric(ctx context.Context, ownerID string, kind domain.MetricKind, value, unit string) (domain.Metric, error) {
	unit, err := domain.NormalizeMetric(ownerID, kind, value, unit)
	if err != nil {
		return domain.Metric{}, err
	}

	if c.probe.IsReachable() {
		m, err := c.remote.CreateMetric(ctx, ownerID, kind, value, unit)
		if err == nil {
			m.Synced = true
			m.TempID = ""
			_ = c.queue.Append(SnapshotCollection, m)
			return m, nil
		}
		if errors.Is(err, domain.ErrRejected) {
			return domain.Metric{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Metric{}, ctxErr
		}
		c.logger.Warn("remote write failed, queueing", "owner", ownerID, "kind", kind, "error", err)
	}

	now := c.now()
	m := domain.Metric{
		TempID:    c.newID(),
		UserID:    ownerID,
		Kind:      kind,
		Value:     value,
		Unit:      unit,
		Date:      domain.Day(now),
		CreatedAt: now.UTC(),
		Synced:    false,
	}
	if err := c.queue.Append(PendingCollection, m); err != nil {
		c.logger.Error("metric could not be queued", "owner", ownerID, "temp_id", m.TempID, "error", err)
	}
	return m, nil
}

// Pending returns the owner's queued, unconfirmed records in enqueue order.
func (c *Coordinator) Pending(ownerID string) []domain.Metric {
	return filterOwner(c.queue.Read(PendingCollection), ownerID, true)
}

// Status reports the indicator state for ownerID.
func (c *Coordinator) Status(ownerID string) Status {
	if !c.probe.IsReachable() {
		return StatusOffline
	}
	if c.state.Draining(ownerID) {
		return StatusSyncing
	}
	return StatusOnline
}

func confirmed(ms []domain.Metric) []domain.Metric {
	out := make([]domain.Metric, 0, len(ms))
	for _, m := range ms {
		m.Synced = true
		m.TempID = ""
		out = append(out, m)
	}
	return out
}

func filterOwner(ms []domain.Metric, ownerID string, unsyncedOnly bool) []domain.Metric {
	out := make([]domain.Metric, 0, len(ms))
	for _, m := range ms {
		if m.UserID != ownerID {
			continue
		}
		if unsyncedOnly && m.Synced {
			continue
		}
		out = append(out, m)
	}
	return out
}
