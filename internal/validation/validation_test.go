package validation

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func respWith(header http.Header, body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestEnforceHTTPSPolicy_RecordsButNeverBlocks(t *testing.T) {
	pol := Policy{HTTPSRequired: true}

	var rep Report
	EnforceHTTPSPolicy("http://example.com", pol, &rep)
	if rep.HTTPSPolicyOK {
		t.Fatalf("http URL should fail the policy")
	}
	if len(rep.Issues) != 1 || rep.Issues[0] != "HTTPS required by policy, but URL is not https" {
		t.Fatalf("unexpected issues: %v", rep.Issues)
	}

	rep = Report{}
	EnforceHTTPSPolicy("https://example.com", pol, &rep)
	if !rep.HTTPSPolicyOK || len(rep.Issues) != 0 {
		t.Fatalf("https URL should pass, got %+v", rep)
	}

	rep = Report{}
	EnforceHTTPSPolicy("http://example.com", Policy{HTTPSRequired: false}, &rep)
	if !rep.HTTPSPolicyOK {
		t.Fatalf("disabled policy should always pass")
	}
}

func TestValidateResponse_RequiredHeaderMissing(t *testing.T) {
	pol := DefaultPolicy()

	var rep Report
	ValidateResponse(respWith(http.Header{}, ""), pol, &rep)

	if rep.HeaderOK {
		t.Fatalf("expected header failure")
	}
	// Content-Type is both a required header and the allow-list subject, so
	// its absence is reported by each rule.
	want := []string{"Missing header: Content-Type", "Missing header: Content-Type"}
	if len(rep.Issues) != len(want) {
		t.Fatalf("issues = %v", rep.Issues)
	}
	for i := range want {
		if rep.Issues[i] != want[i] {
			t.Fatalf("issue[%d] = %q, want %q", i, rep.Issues[i], want[i])
		}
	}
	if !rep.BodyOK {
		t.Fatalf("no body rules configured, body must pass")
	}
}

func TestValidateResponse_ContentTypeAllowList(t *testing.T) {
	pol := DefaultPolicy()

	h := http.Header{}
	h.Set("Content-Type", "TEXT/HTML; charset=utf-8")
	var rep Report
	ValidateResponse(respWith(h, ""), pol, &rep)
	if !rep.HeaderOK {
		t.Fatalf("prefix match should be case-insensitive, got issues %v", rep.Issues)
	}

	h = http.Header{}
	h.Set("Content-Type", "application/xml")
	rep = Report{}
	ValidateResponse(respWith(h, ""), pol, &rep)
	if rep.HeaderOK {
		t.Fatalf("xml should not be allowed")
	}
	if len(rep.Issues) != 1 || rep.Issues[0] != "Content-Type not allowed: application/xml" {
		t.Fatalf("unexpected issues: %v", rep.Issues)
	}
}

func TestValidateResponse_HeaderEqualsAndContains(t *testing.T) {
	pol := Policy{
		HeaderEquals:   []HeaderRule{{Name: "X-Env", Value: "prod"}},
		HeaderContains: []HeaderRule{{Name: "Server", Value: "nginx"}},
	}

	h := http.Header{}
	h.Set("X-Env", "staging")
	h.Set("Server", "nginx/1.25.3")
	var rep Report
	ValidateResponse(respWith(h, ""), pol, &rep)

	if rep.HeaderOK {
		t.Fatalf("expected equals mismatch to fail headers")
	}
	if len(rep.Issues) != 1 || rep.Issues[0] != "Header X-Env mismatch: got 'staging', expected 'prod'" {
		t.Fatalf("unexpected issues: %v", rep.Issues)
	}

	h = http.Header{}
	h.Set("X-Env", "prod")
	h.Set("Server", "apache")
	rep = Report{}
	ValidateResponse(respWith(h, ""), pol, &rep)
	if len(rep.Issues) != 1 || rep.Issues[0] != "Header Server does not contain 'nginx': got 'apache'" {
		t.Fatalf("unexpected issues: %v", rep.Issues)
	}
}

func TestValidateResponse_PresentButEmptyHeaderIsNotMissing(t *testing.T) {
	pol := Policy{RequiredHeaders: []string{"X-Trace"}}

	h := http.Header{}
	h.Set("X-Trace", "")
	var rep Report
	ValidateResponse(respWith(h, ""), pol, &rep)
	if !rep.HeaderOK {
		t.Fatalf("header set to empty string is still present, got %v", rep.Issues)
	}
}

func TestBodyRules_AllAndAny(t *testing.T) {
	pol := Policy{
		MaxBodyBytes:    64 * 1024,
		BodyContainsAll: []string{"Welcome", "Login"},
		BodyContainsAny: []string{"Home", "Dashboard"},
	}

	h := http.Header{}
	var rep Report
	ValidateResponse(respWith(h, "Welcome to my Home page. Please Login."), pol, &rep)
	if !rep.BodyOK {
		t.Fatalf("expected body to pass, issues: %v", rep.Issues)
	}

	rep = Report{}
	ValidateResponse(respWith(h, "Hello nobody."), pol, &rep)
	if rep.BodyOK {
		t.Fatalf("expected body failure")
	}
	want := []string{
		"Body missing required text: 'Welcome'",
		"Body missing required text: 'Login'",
	}
	if len(rep.Issues) != 3 {
		t.Fatalf("issues = %v", rep.Issues)
	}
	for i := range want {
		if rep.Issues[i] != want[i] {
			t.Fatalf("issue[%d] = %q, want %q", i, rep.Issues[i], want[i])
		}
	}
	if !strings.HasPrefix(rep.Issues[2], "Body did not contain ANY of:") {
		t.Fatalf("missing ANY issue, got %q", rep.Issues[2])
	}
}

func TestBodyRules_SkippedWhenUnconfigured(t *testing.T) {
	// The body must not even be read when no rules are set.
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(&failingReader{}),
	}
	var rep Report
	ValidateResponse(resp, Policy{}, &rep)
	if !rep.BodyOK {
		t.Fatalf("body must pass when no rules configured")
	}
}

func TestBodyRules_TruncationAtLimit(t *testing.T) {
	// The needle sits beyond the byte cap, so a capped read cannot see it.
	body := strings.Repeat("x", 100) + " Login"
	pol := Policy{MaxBodyBytes: 50, BodyContainsAll: []string{"Login"}}

	var rep Report
	ValidateResponse(respWith(http.Header{}, body), pol, &rep)
	if rep.BodyOK {
		t.Fatalf("needle past the cap must not match")
	}
	if len(rep.Issues) != 1 || rep.Issues[0] != "Body missing required text: 'Login'" {
		t.Fatalf("unexpected issues: %v", rep.Issues)
	}
}

func TestBodyRules_ReadFailure(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(&failingReader{}),
	}
	pol := Policy{MaxBodyBytes: 1024, BodyContainsAll: []string{"anything"}}

	var rep Report
	ValidateResponse(resp, pol, &rep)
	if rep.BodyOK {
		t.Fatalf("read failure must fail the body check")
	}
	if len(rep.Issues) != 1 || !strings.HasPrefix(rep.Issues[0], "Failed to read response body:") {
		t.Fatalf("unexpected issues: %v", rep.Issues)
	}
}

func TestBodyRules_InvalidUTF8IsLossy(t *testing.T) {
	body := "Wel\xff\xfecome Login"
	pol := Policy{MaxBodyBytes: 1024, BodyContainsAll: []string{"Login"}}

	var rep Report
	ValidateResponse(respWith(http.Header{}, body), pol, &rep)
	if !rep.BodyOK {
		t.Fatalf("invalid bytes elsewhere must not break matching, issues: %v", rep.Issues)
	}
}

func TestReport_OverallOK(t *testing.T) {
	rep := Report{HeaderOK: true, BodyOK: true, HTTPSPolicyOK: true}
	if !rep.OverallOK() {
		t.Fatalf("all layers passed, overall should be true")
	}
	rep.BodyOK = false
	if rep.OverallOK() {
		t.Fatalf("one failing layer must fail overall")
	}
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}
