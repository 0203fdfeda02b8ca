package offline

import (
	"context"
	"sync"
)

// SyncState tracks which owners have a drain in flight. It is an in-process
// guard only; separate processes sharing a store are not coordinated.
type SyncState struct {
	mu       sync.Mutex
	draining map[string]bool
}

// NewSyncState returns an idle state.
func NewSyncState() *SyncState {
	return &SyncState{draining: make(map[string]bool)}
}

// Draining reports whether a drain is running for ownerID.
func (s *SyncState) Draining(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draining[ownerID]
}

func (s *SyncState) begin(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining[ownerID] {
		return false
	}
	s.draining[ownerID] = true
	return true
}

func (s *SyncState) end(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.draining, ownerID)
}

// DrainReport describes one drain.
type DrainReport struct {
	Attempted  int  `json:"attempted"`
	Synced     int  `json:"synced"`
	Failed     int  `json:"failed"`
	Remaining  int  `json:"remaining"`
	Suppressed bool `json:"suppressed"`
	Refreshed  bool `json:"refreshed"`
}

// Drain replays the owner's queued writes one at a time in enqueue order.
// Successful entries are marked synced as they complete; failed entries stay
// queued and do not stop the rest. Afterwards synced entries are compacted
// away and the snapshot is refreshed from the service.
//
// If a drain for ownerID is already running the call returns at once with
// Suppressed set. Replays carry no idempotency key: an entry whose
// mark-synced write fails after a successful create will be sent again by
// the next drain.
func (c *Coordinator) Drain(ctx context.Context, ownerID string) DrainReport {
	if !c.state.begin(ownerID) {
		c.logger.Debug("drain already running", "owner", ownerID)
		return DrainReport{Suppressed: true}
	}
	defer c.state.end(ownerID)

	var rep DrainReport
	for _, m := range c.Pending(ownerID) {
		if ctx.Err() != nil {
			break
		}
		rep.Attempted++
		if _, err := c.remote.CreateMetric(ctx, ownerID, m.Kind, m.Value, m.Unit); err != nil {
			rep.Failed++
			c.logger.Warn("replay failed", "owner", ownerID, "temp_id", m.TempID, "kind", m.Kind, "error", err)
			continue
		}
		if _, err := c.queue.MarkSynced(PendingCollection, m.TempID); err != nil {
			c.logger.Warn("replayed entry could not be marked synced", "owner", ownerID, "temp_id", m.TempID, "error", err)
		}
		rep.Synced++
	}

	if err := c.queue.ClearConfirmed(PendingCollection); err != nil {
		c.logger.Warn("pending queue compaction failed", "error", err)
	}

	if ms, err := c.remote.ListMetrics(ctx, ownerID); err == nil {
		_ = c.queue.Write(SnapshotCollection, confirmed(ms))
		rep.Refreshed = true
	} else {
		c.logger.Warn("snapshot refresh failed", "owner", ownerID, "error", err)
	}

	rep.Remaining = len(c.Pending(ownerID))
	c.logger.Info("drain finished", "owner", ownerID,
		"attempted", rep.Attempted, "synced", rep.Synced, "failed", rep.Failed,
		"remaining", rep.Remaining, "refreshed", rep.Refreshed)
	return rep
}

// Watch drains ownerID's queue whenever the probe reports the service became
// reachable. If it is reachable already, a catch-up drain runs before Watch
// returns. The returned func stops watching.
func (c *Coordinator) Watch(ctx context.Context, ownerID string) (stop func()) {
	unsubscribe := c.probe.OnBecameReachable(func() {
		if ctx.Err() != nil {
			return
		}
		c.Drain(ctx, ownerID)
	})
	if c.probe.IsReachable() {
		c.Drain(ctx, ownerID)
	}
	return unsubscribe
}
