// Package offline implements the offline-first write-through cache for
// health metrics: a durable local queue, a read/write facade that falls back
// to it when the remote service is unreachable, and the drain that replays
// queued writes once connectivity returns.
package offline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fittrack/internal/domain"
)

// Collection keys in the local store.
const (
	SnapshotCollection = "offline_health_metrics"
	PendingCollection  = "pending_metric_uploads"
)

const (
	collectionVersion = 1
	collectionKind    = "metric"
)

var errSchemaMismatch = errors.New("stored collection does not match schema")

// envelope is the stored shape of a collection.
type envelope struct {
	Version int             `json:"version"`
	Kind    string          `json:"kind"`
	Records []domain.Metric `json:"records"`
}

// LocalQueue stores ordered metric collections in a KV. It has no indexing:
// every operation reads and rewrites a whole collection.
type LocalQueue struct {
	mu     sync.Mutex
	kv     KV
	logger *slog.Logger
}

// NewLocalQueue wraps kv. A nil logger uses slog.Default().
func NewLocalQueue(kv KV, logger *slog.Logger) *LocalQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalQueue{kv: kv, logger: logger}
}

// Read returns the stored collection, or an empty slice when nothing is
// stored or the stored value cannot be decoded. It never fails.
func (q *LocalQueue) Read(collection string) []domain.Metric {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.read(collection)
}

// Write replaces the stored collection with records.
func (q *LocalQueue) Write(collection string, records []domain.Metric) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.write(collection, records)
}

// Append adds m to the end of the collection.
func (q *LocalQueue) Append(collection string, m domain.Metric) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	records := q.read(collection)
	return q.write(collection, append(records, m))
}

// MarkSynced flags the entry with tempID as synced. It reports whether an
// entry was found.
func (q *LocalQueue) MarkSynced(collection, tempID string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records := q.read(collection)
	for i := range records {
		if records[i].TempID == tempID {
			if records[i].Synced {
				return true, nil
			}
			records[i].Synced = true
			return true, q.write(collection, records)
		}
	}
	return false, nil
}

// ClearConfirmed drops synced entries and keeps unsynced ones in order.
// Nothing is written when no entry is synced.
func (q *LocalQueue) ClearConfirmed(collection string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	records := q.read(collection)
	kept := make([]domain.Metric, 0, len(records))
	for _, r := range records {
		if !r.Synced {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return q.write(collection, kept)
}

func (q *LocalQueue) read(collection string) []domain.Metric {
	raw, ok, err := q.kv.Get(collection)
	if err != nil {
		q.logger.Warn("local store read failed", "collection", collection, "error", err)
		return []domain.Metric{}
	}
	if !ok || raw == "" {
		return []domain.Metric{}
	}
	records, err := decodeCollection(raw)
	if err != nil {
		q.logger.Warn("discarding unreadable collection", "collection", collection, "error", err)
		return []domain.Metric{}
	}
	return records
}

func (q *LocalQueue) write(collection string, records []domain.Metric) error {
	raw, err := encodeCollection(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := q.kv.Set(collection, raw); err != nil {
		q.logger.Warn("local store write failed", "collection", collection, "records", len(records), "error", err)
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

func encodeCollection(records []domain.Metric) (string, error) {
	if records == nil {
		records = []domain.Metric{}
	}
	b, err := json.Marshal(envelope{Version: collectionVersion, Kind: collectionKind, Records: records})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCollection(raw string) ([]domain.Metric, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, err
	}
	if env.Version != collectionVersion || env.Kind != collectionKind {
		return nil, fmt.Errorf("%w: version %d kind %q", errSchemaMismatch, env.Version, env.Kind)
	}
	for i, r := range env.Records {
		if r.UserID == "" || !r.Kind.Valid() {
			return nil, fmt.Errorf("%w: record %d", errSchemaMismatch, i)
		}
	}
	if env.Records == nil {
		env.Records = []domain.Metric{}
	}
	return env.Records, nil
}
