package stats

import "github.com/juanalonso3/webwatch/internal/probe"

// Summary reduces one batch of probe results to run-level statistics.
// Latencies are truncated to whole milliseconds before averaging.
type Summary struct {
	Total           int     `json:"total"`
	Successes       int     `json:"successes"`
	HTTPErrors      int     `json:"http_errors"`
	TransportErrors int     `json:"transport_errors"`
	AvgResponseMS   float64 `json:"avg_response_ms"`
	UptimePct       float64 `json:"uptime_pct"`
}

// Compute tallies outcome kinds, average latency and uptime percentage.
// Every field is zero for an empty batch.
func Compute(results []probe.Result) Summary {
	s := Summary{Total: len(results)}
	if s.Total == 0 {
		return s
	}

	var totalMS int64
	for i := range results {
		totalMS += results[i].ElapsedMillis()
		switch results[i].Outcome.Kind {
		case probe.OutcomeSuccess:
			s.Successes++
		case probe.OutcomeHTTPError:
			s.HTTPErrors++
		case probe.OutcomeTransport:
			s.TransportErrors++
		}
	}

	s.AvgResponseMS = float64(totalMS) / float64(s.Total)
	s.UptimePct = float64(s.Successes) * 100 / float64(s.Total)
	return s
}
