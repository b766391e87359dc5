package probe

import "fmt"

// OutcomeKind discriminates the closed set of probe outcomes. Every consumer
// switches over exactly these three values.
type OutcomeKind int

const (
	// OutcomeSuccess is a received response with a 2xx status.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeHTTPError is a received response with any non-2xx status.
	OutcomeHTTPError
	// OutcomeTransport means no interpretable HTTP response was obtained:
	// DNS failure, TLS failure, timeout, connection reset, malformed bytes.
	OutcomeTransport
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// MarshalText serializes kinds by name so API payloads stay readable.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *OutcomeKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "success":
		*k = OutcomeSuccess
	case "http_error":
		*k = OutcomeHTTPError
	case "transport":
		*k = OutcomeTransport
	default:
		return fmt.Errorf("unknown outcome kind %q", string(b))
	}
	return nil
}

// Outcome classifies one probe attempt. Exactly one variant's payload is
// meaningful: StatusCode for Success and HTTPError, Err for Transport.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	StatusCode int         `json:"status_code,omitempty"`
	Err        string      `json:"error,omitempty"`
}

func Success(code int) Outcome {
	return Outcome{Kind: OutcomeSuccess, StatusCode: code}
}

func HTTPError(code int) Outcome {
	return Outcome{Kind: OutcomeHTTPError, StatusCode: code}
}

func Transport(msg string) Outcome {
	return Outcome{Kind: OutcomeTransport, Err: msg}
}
