package repo

import (
	"context"
	"time"

	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/stats"
)

// Snapshot is the latest completed batch: every result in input order plus
// the computed summary. Only the most recent batch is retained anywhere;
// there is no run history.
type Snapshot struct {
	RunAt        time.Time      `json:"run_at"`
	TimestampUTC string         `json:"timestamp_utc"`
	Results      []probe.Result `json:"results"`
	Summary      stats.Summary  `json:"summary"`
}

// NewSnapshot stamps a completed batch. The batch timestamp is taken from
// the results, since every result in a batch carries the same one.
func NewSnapshot(results []probe.Result, summary stats.Summary) *Snapshot {
	ts := probe.UnknownTimestamp
	if len(results) > 0 {
		ts = results[0].TimestampUTC
	}
	return &Snapshot{
		RunAt:        time.Now().UTC(),
		TimestampUTC: ts,
		Results:      results,
		Summary:      summary,
	}
}

// SnapshotStore is the port a persistence adapter implements. Save replaces
// whatever snapshot was stored before; Latest returns (nil, nil) while no
// batch has completed yet.
type SnapshotStore interface {
	Save(ctx context.Context, s *Snapshot) error
	Latest(ctx context.Context) (*Snapshot, error)
}
