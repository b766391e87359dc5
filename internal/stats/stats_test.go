package stats_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/stats"
)

func result(out probe.Outcome, elapsed time.Duration) probe.Result {
	return probe.Result{Target: "https://example.com", Outcome: out, Elapsed: elapsed}
}

var _ = Describe("Compute", func() {
	Context("with an empty batch", func() {
		It("returns all zeros", func() {
			s := stats.Compute(nil)
			Expect(s.Total).To(Equal(0))
			Expect(s.Successes).To(Equal(0))
			Expect(s.HTTPErrors).To(Equal(0))
			Expect(s.TransportErrors).To(Equal(0))
			Expect(s.AvgResponseMS).To(BeZero())
			Expect(s.UptimePct).To(BeZero())
		})
	})

	Context("with a mixed batch", func() {
		It("tallies each outcome kind exactly once", func() {
			batch := []probe.Result{
				result(probe.Success(200), 100*time.Millisecond),
				result(probe.Success(204), 200*time.Millisecond),
				result(probe.HTTPError(500), 50*time.Millisecond),
				result(probe.Transport("connection refused"), 350*time.Millisecond),
			}
			s := stats.Compute(batch)
			Expect(s.Total).To(Equal(4))
			Expect(s.Successes).To(Equal(2))
			Expect(s.HTTPErrors).To(Equal(1))
			Expect(s.TransportErrors).To(Equal(1))
			Expect(s.Successes + s.HTTPErrors + s.TransportErrors).To(Equal(s.Total))
		})

		It("averages truncated milliseconds", func() {
			batch := []probe.Result{
				// 100.9ms truncates to 100 before the average is taken.
				result(probe.Success(200), 100*time.Millisecond+900*time.Microsecond),
				result(probe.Success(200), 200*time.Millisecond),
			}
			s := stats.Compute(batch)
			Expect(s.AvgResponseMS).To(Equal(150.0))
		})

		It("computes uptime from successes only", func() {
			batch := []probe.Result{
				result(probe.Success(200), time.Millisecond),
				result(probe.HTTPError(503), time.Millisecond),
				result(probe.Transport("timeout"), time.Millisecond),
			}
			s := stats.Compute(batch)
			Expect(s.UptimePct).To(BeNumerically("~", 33.333, 0.001))
		})
	})

	DescribeTable("uptime percentage",
		func(outcomes []probe.Outcome, want float64) {
			batch := make([]probe.Result, len(outcomes))
			for i, out := range outcomes {
				batch[i] = result(out, time.Millisecond)
			}
			Expect(stats.Compute(batch).UptimePct).To(BeNumerically("~", want, 0.001))
		},
		Entry("all up", []probe.Outcome{probe.Success(200), probe.Success(200)}, 100.0),
		Entry("all down", []probe.Outcome{probe.HTTPError(500), probe.Transport("x")}, 0.0),
		Entry("half up", []probe.Outcome{probe.Success(201), probe.HTTPError(404)}, 50.0),
	)
})
