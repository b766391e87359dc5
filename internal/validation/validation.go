package validation

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Report collects the outcome of every validation layer for one probe.
// Issues only accumulate; nothing is removed once recorded.
type Report struct {
	HeaderOK      bool     `json:"header_ok"`
	BodyOK        bool     `json:"body_ok"`
	HTTPSPolicyOK bool     `json:"https_policy_ok"`
	Issues        []string `json:"issues,omitempty"`
}

// OverallOK reports whether every validation layer passed.
func (r *Report) OverallOK() bool {
	return r.HeaderOK && r.BodyOK && r.HTTPSPolicyOK
}

// HeaderRule pairs a header name with the value (or substring) it must carry.
type HeaderRule struct {
	Name  string `json:"name" mapstructure:"name"`
	Value string `json:"value" mapstructure:"value"`
}

// Policy is the validation half of a run's configuration. It is built once
// per run and read concurrently by every worker, so it must not be mutated
// after construction.
type Policy struct {
	HTTPSRequired bool

	RequiredHeaders  []string
	ContentTypeAllow []string
	HeaderEquals     []HeaderRule
	HeaderContains   []HeaderRule

	MaxBodyBytes    int64
	BodyContainsAll []string
	BodyContainsAny []string
}

// DefaultPolicy is the stock monitoring policy: HTTPS expected, Content-Type
// present and HTML or JSON, bodies capped at 64 KiB, no body text rules.
func DefaultPolicy() Policy {
	return Policy{
		HTTPSRequired:    true,
		RequiredHeaders:  []string{"Content-Type"},
		ContentTypeAllow: []string{"text/html", "application/json"},
		MaxBodyBytes:     64 * 1024,
	}
}

// EnforceHTTPSPolicy records whether target satisfies the HTTPS-only policy.
// The verdict is advisory: callers issue the request regardless, so an http://
// URL still gets probed and its report simply carries the policy issue.
func EnforceHTTPSPolicy(target string, pol Policy, rep *Report) {
	if !pol.HTTPSRequired || strings.HasPrefix(target, "https://") {
		rep.HTTPSPolicyOK = true
		return
	}
	rep.HTTPSPolicyOK = false
	rep.Issues = append(rep.Issues, "HTTPS required by policy, but URL is not https")
}

// ValidateResponse runs header checks and, when body rules are configured,
// body checks against resp. The body is read at most once and never beyond
// pol.MaxBodyBytes.
func ValidateResponse(resp *http.Response, pol Policy, rep *Report) {
	validateHeaders(resp, pol, rep)

	if len(pol.BodyContainsAll) == 0 && len(pol.BodyContainsAny) == 0 {
		rep.BodyOK = true
		return
	}
	validateBody(resp, pol, rep)
}

func validateHeaders(resp *http.Response, pol Policy, rep *Report) {
	ok := true

	for _, name := range pol.RequiredHeaders {
		if len(resp.Header.Values(name)) == 0 {
			ok = false
			rep.Issues = append(rep.Issues, "Missing header: "+name)
		}
	}

	if len(pol.ContentTypeAllow) > 0 {
		if len(resp.Header.Values("Content-Type")) == 0 {
			ok = false
			rep.Issues = append(rep.Issues, "Missing header: Content-Type")
		} else if ct := resp.Header.Get("Content-Type"); !contentTypeAllowed(ct, pol.ContentTypeAllow) {
			ok = false
			rep.Issues = append(rep.Issues, "Content-Type not allowed: "+ct)
		}
	}

	for _, rule := range pol.HeaderEquals {
		switch got := resp.Header.Get(rule.Name); {
		case len(resp.Header.Values(rule.Name)) == 0:
			ok = false
			rep.Issues = append(rep.Issues, "Missing header: "+rule.Name)
		case got != rule.Value:
			ok = false
			rep.Issues = append(rep.Issues,
				fmt.Sprintf("Header %s mismatch: got '%s', expected '%s'", rule.Name, got, rule.Value))
		}
	}

	for _, rule := range pol.HeaderContains {
		switch got := resp.Header.Get(rule.Name); {
		case len(resp.Header.Values(rule.Name)) == 0:
			ok = false
			rep.Issues = append(rep.Issues, "Missing header: "+rule.Name)
		case !strings.Contains(got, rule.Value):
			ok = false
			rep.Issues = append(rep.Issues,
				fmt.Sprintf("Header %s does not contain '%s': got '%s'", rule.Name, rule.Value, got))
		}
	}

	rep.HeaderOK = ok
}

// contentTypeAllowed matches on prefix so parameters like "; charset=utf-8"
// never disqualify a response. Comparison is case-insensitive.
func contentTypeAllowed(ct string, allow []string) bool {
	lower := strings.ToLower(ct)
	for _, prefix := range allow {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func validateBody(resp *http.Response, pol Policy, rep *Report) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, pol.MaxBodyBytes))
	if err != nil {
		rep.BodyOK = false
		rep.Issues = append(rep.Issues, fmt.Sprintf("Failed to read response body: %v", err))
		return
	}

	// Lossy decode: invalid UTF-8 runs become replacement characters rather
	// than failing the check.
	text := strings.ToValidUTF8(string(raw), "�")

	ok, issues := CheckBodyText(text, pol)
	rep.BodyOK = ok
	rep.Issues = append(rep.Issues, issues...)
}

// CheckBodyText applies the configured body text rules to already-decoded
// text. Split out from validateBody so the matching rules can be exercised
// without a live response.
func CheckBodyText(text string, pol Policy) (bool, []string) {
	var issues []string

	for _, needle := range pol.BodyContainsAll {
		if !ContainsToken(text, needle) {
			issues = append(issues, fmt.Sprintf("Body missing required text: '%s'", needle))
		}
	}
	ok := len(issues) == 0

	if len(pol.BodyContainsAny) > 0 {
		hit := false
		for _, needle := range pol.BodyContainsAny {
			if ContainsToken(text, needle) {
				hit = true
				break
			}
		}
		if !hit {
			ok = false
			issues = append(issues, fmt.Sprintf("Body did not contain ANY of: %q", pol.BodyContainsAny))
		}
	}

	return ok, issues
}
