package timesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultURL is the public time API the dispatcher asks for one reference
// timestamp per batch.
const DefaultURL = "https://timeapi.io/api/Time/current/zone?timeZone=UTC"

// Source yields an ISO-8601 UTC timestamp string. Failures are recoverable
// by contract: callers substitute a sentinel and carry on.
type Source interface {
	FetchUTCTimestamp(ctx context.Context) (string, error)
}

// Client fetches the timestamp from an HTTP time API.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		URL:        DefaultURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type timeAPIResponse struct {
	DateTime string `json:"dateTime"`
}

func (c *Client) FetchUTCTimestamp(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", fmt.Errorf("time request failed: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("time request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("time request failed: status %d", resp.StatusCode)
	}

	var body timeAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to parse time JSON: %w", err)
	}
	if body.DateTime == "" {
		return "", fmt.Errorf("failed to parse time JSON: missing dateTime")
	}
	return body.DateTime, nil
}
