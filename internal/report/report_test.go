package report

import (
	"strings"
	"testing"
	"time"

	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/stats"
	"github.com/juanalonso3/webwatch/internal/validation"
)

func TestWriteResult_Success(t *testing.T) {
	r := probe.Result{
		Target:       "https://example.com",
		Outcome:      probe.Success(200),
		Elapsed:      123 * time.Millisecond,
		TimestampUTC: "2025-01-15T10:30:00",
		Validation:   validation.Report{HeaderOK: true, BodyOK: true, HTTPSPolicyOK: true},
	}

	var sb strings.Builder
	WriteResult(&sb, &r)
	out := sb.String()

	for _, want := range []string{
		"URL: https://example.com\n",
		"Status: 200 (success)\n",
		"Response time (ms): 123\n",
		"Timestamp (UTC): 2025-01-15T10:30:00\n",
		"Validation overall ok? true\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Issues:") {
		t.Fatalf("clean result should not print an issues block:\n%s", out)
	}
}

func TestWriteResult_TransportWithIssues(t *testing.T) {
	r := probe.Result{
		Target:       "http://old.example.com",
		Outcome:      probe.Transport("connection refused"),
		Elapsed:      5 * time.Second,
		TimestampUTC: "unknown",
		Validation: validation.Report{
			Issues: []string{
				"HTTPS required by policy, but URL is not https",
				"Transport error: connection refused",
			},
		},
	}

	var sb strings.Builder
	WriteResult(&sb, &r)
	out := sb.String()

	if !strings.Contains(out, "Transport error: connection refused\n") {
		t.Fatalf("missing transport line:\n%s", out)
	}
	if strings.Contains(out, "Status:") {
		t.Fatalf("transport outcome has no status line:\n%s", out)
	}
	if !strings.Contains(out, " * HTTPS required by policy, but URL is not https\n") {
		t.Fatalf("missing issue line:\n%s", out)
	}
}

func TestWriteBatch_Layout(t *testing.T) {
	results := []probe.Result{
		{Target: "https://a.example", Outcome: probe.Success(200), TimestampUTC: "t"},
		{Target: "https://b.example", Outcome: probe.HTTPError(500), TimestampUTC: "t"},
	}
	sum := stats.Compute(results)

	var sb strings.Builder
	WriteBatch(&sb, results, sum)
	out := sb.String()

	// Results render in order, each followed by a divider, then the summary.
	ia := strings.Index(out, "https://a.example")
	ib := strings.Index(out, "https://b.example")
	is := strings.Index(out, "=== Summary ===")
	if ia < 0 || ib < 0 || is < 0 || !(ia < ib && ib < is) {
		t.Fatalf("unexpected layout:\n%s", out)
	}
	if got := strings.Count(out, divider); got != 2 {
		t.Fatalf("want 2 dividers, got %d", got)
	}
	if !strings.Contains(out, "Status: 500 (http error)\n") {
		t.Fatalf("missing http error line:\n%s", out)
	}
	if !strings.Contains(out, "Uptime: 50.00%\n") {
		t.Fatalf("missing uptime line:\n%s", out)
	}
}
