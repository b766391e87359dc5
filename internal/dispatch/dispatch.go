package dispatch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/timesource"
)

// Pool fans a batch of targets out to a fixed set of workers and collects
// the results back into input order. A Pool is stateless between batches
// and safe to reuse.
type Pool struct {
	Logger     *zap.Logger
	Checker    probe.Checker
	Time       timesource.Source
	Workers    int
	MaxRetries int
}

func NewPool(logger *zap.Logger, checker probe.Checker, ts timesource.Source, workers, maxRetries int) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Pool{
		Logger:     logger,
		Checker:    checker,
		Time:       ts,
		Workers:    workers,
		MaxRetries: maxRetries,
	}
}

// job carries the original position so results can be reordered centrally;
// workers never coordinate ordering among themselves.
type job struct {
	idx    int
	target string
}

type slotted struct {
	idx int
	res probe.Result
}

// CheckAll probes every target and returns exactly one result per target,
// in input order regardless of completion order. The worker count is
// clamped to [1, len(targets)]. Retries happen in place on the claiming
// worker, without backoff, only while the outcome is transport-classified
// and the retry budget allows another attempt; any received HTTP response,
// whatever its status, is final.
func (p *Pool) CheckAll(ctx context.Context, targets []string) []probe.Result {
	n := len(targets)
	if n == 0 {
		return nil
	}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	// One timestamp per batch; every result carries the same one.
	stamp := p.batchTimestamp(ctx)

	p.Logger.Debug("batch_start",
		zap.Int("targets", n),
		zap.Int("workers", workers),
		zap.Int("max_retries", p.MaxRetries),
	)

	jobs := make(chan job)
	results := make(chan slotted)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := p.checkWithRetry(ctx, j.target)
				res.TimestampUTC = stamp
				results <- slotted{idx: j.idx, res: res}
			}
		}()
	}

	go func() {
		for i, target := range targets {
			jobs <- job{idx: i, target: target}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]probe.Result, n)
	filled := make([]bool, n)
	for s := range results {
		out[s.idx] = s.res
		filled[s.idx] = true
	}
	for i, ok := range filled {
		if !ok {
			panic(fmt.Sprintf("dispatch: no result collected for target %d (%s)", i, targets[i]))
		}
	}
	return out
}

// checkWithRetry returns only the final attempt's result; earlier transport
// failures are discarded. The attempt counter is local to one target.
func (p *Pool) checkWithRetry(ctx context.Context, target string) probe.Result {
	for attempt := 0; ; attempt++ {
		res := p.Checker.Check(ctx, target)
		if res.Outcome.Kind != probe.OutcomeTransport || attempt >= p.MaxRetries {
			return res
		}
		p.Logger.Debug("transport_retry",
			zap.String("url", target),
			zap.Int("attempt", attempt+1),
			zap.String("error", res.Outcome.Err),
		)
	}
}

func (p *Pool) batchTimestamp(ctx context.Context) string {
	if p.Time == nil {
		return probe.UnknownTimestamp
	}
	stamp, err := p.Time.FetchUTCTimestamp(ctx)
	if err != nil {
		p.Logger.Warn("batch_timestamp_unavailable", zap.Error(err))
		return probe.UnknownTimestamp
	}
	return stamp
}
