package probe

import (
	"context"
	"net/http"
	"time"

	"github.com/juanalonso3/webwatch/internal/validation"
)

// HTTPChecker probes targets with a plain GET and classifies the outcome.
// One instance is shared by every worker; the client and policy are both
// safe for concurrent use.
type HTTPChecker struct {
	Client *http.Client
	Policy validation.Policy
}

func NewHTTPChecker(timeout time.Duration, pol validation.Policy) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
		Policy: pol,
	}
}

// Check runs one attempt end to end: HTTPS policy on the raw URL, one GET,
// then header and body validation when a response arrived. The HTTPS policy
// verdict is advisory; the request is issued regardless.
func (h *HTTPChecker) Check(ctx context.Context, target string) Result {
	var rep validation.Report
	validation.EnforceHTTPSPolicy(target, h.Policy, &rep)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{
			Target:     target,
			Outcome:    Transport(err.Error()),
			Elapsed:    time.Since(start),
			Validation: failNoResponse(rep, err),
		}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return Result{
			Target:     target,
			Outcome:    Transport(err.Error()),
			Elapsed:    time.Since(start),
			Validation: failNoResponse(rep, err),
		}
	}
	defer resp.Body.Close()

	validation.ValidateResponse(resp, h.Policy, &rep)
	elapsed := time.Since(start)

	out := Success(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out = HTTPError(resp.StatusCode)
	}
	return Result{
		Target:     target,
		Outcome:    out,
		Elapsed:    elapsed,
		Validation: rep,
	}
}

// failNoResponse marks the report for an attempt that produced no response:
// there is nothing to validate, so header and body checks fail outright.
func failNoResponse(rep validation.Report, err error) validation.Report {
	rep.HeaderOK = false
	rep.BodyOK = false
	rep.Issues = append(rep.Issues, "Transport error: "+err.Error())
	return rep
}
