package report

import (
	"fmt"
	"io"

	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/stats"
)

const divider = "----------------------------------------"

// WriteResult renders one probe result as a human-readable block.
func WriteResult(w io.Writer, r *probe.Result) {
	fmt.Fprintf(w, "URL: %s\n", r.Target)
	switch r.Outcome.Kind {
	case probe.OutcomeSuccess:
		fmt.Fprintf(w, "Status: %d (success)\n", r.Outcome.StatusCode)
	case probe.OutcomeHTTPError:
		fmt.Fprintf(w, "Status: %d (http error)\n", r.Outcome.StatusCode)
	case probe.OutcomeTransport:
		fmt.Fprintf(w, "Transport error: %s\n", r.Outcome.Err)
	}
	fmt.Fprintf(w, "Response time (ms): %d\n", r.ElapsedMillis())
	fmt.Fprintf(w, "Timestamp (UTC): %s\n", r.TimestampUTC)
	fmt.Fprintf(w, "Validation overall ok? %t\n", r.Validation.OverallOK())
	fmt.Fprintf(w, " - Header ok: %t\n", r.Validation.HeaderOK)
	fmt.Fprintf(w, " - Body ok: %t\n", r.Validation.BodyOK)
	fmt.Fprintf(w, " - HTTPS policy ok: %t\n", r.Validation.HTTPSPolicyOK)
	if len(r.Validation.Issues) > 0 {
		fmt.Fprintln(w, "Issues:")
		for _, issue := range r.Validation.Issues {
			fmt.Fprintf(w, " * %s\n", issue)
		}
	}
}

// WriteSummary renders the batch statistics block.
func WriteSummary(w io.Writer, s stats.Summary) {
	fmt.Fprintln(w, "=== Summary ===")
	fmt.Fprintf(w, "Total: %d\n", s.Total)
	fmt.Fprintf(w, "Successes: %d\n", s.Successes)
	fmt.Fprintf(w, "HTTP errors: %d\n", s.HTTPErrors)
	fmt.Fprintf(w, "Transport errors: %d\n", s.TransportErrors)
	fmt.Fprintf(w, "Avg response time (ms): %.2f\n", s.AvgResponseMS)
	fmt.Fprintf(w, "Uptime: %.2f%%\n", s.UptimePct)
}

// WriteBatch renders every result in order followed by the summary.
func WriteBatch(w io.Writer, results []probe.Result, s stats.Summary) {
	for i := range results {
		WriteResult(w, &results[i])
		fmt.Fprintln(w, divider)
	}
	WriteSummary(w, s)
}
