package probe

import (
	"context"
	"time"

	"github.com/juanalonso3/webwatch/internal/validation"
)

// UnknownTimestamp is the sentinel batch timestamp recorded when the network
// time source was unavailable. A time outage never fails a batch.
const UnknownTimestamp = "unknown"

// Result is the unit exchanged between a worker and the collector: one
// target's final outcome, latency, batch timestamp and validation report.
// It is immutable once produced.
type Result struct {
	Target       string            `json:"url"`
	Outcome      Outcome           `json:"outcome"`
	Elapsed      time.Duration     `json:"elapsed_ns"`
	TimestampUTC string            `json:"timestamp_utc"`
	Validation   validation.Report `json:"validation"`
}

// ElapsedMillis is Elapsed in whole milliseconds, the unit summaries and
// renderers report.
func (r *Result) ElapsedMillis() int64 {
	return r.Elapsed.Milliseconds()
}

// Checker performs a single check attempt for a target URL. Implementations
// must be safe for concurrent use; the dispatcher shares one Checker across
// all workers.
type Checker interface {
	Check(ctx context.Context, target string) Result
}
