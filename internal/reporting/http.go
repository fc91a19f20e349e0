package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnexpectedStatus is wrapped by StatusError for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError carries the status and a truncated body of a rejected report.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("watch report: status %d body=%q", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// HTTPClient reports watch events to the REST API.
type HTTPClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewHTTPClient returns a client for baseURL with a 10s request timeout.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type watchRequest struct {
	WatchedSeconds int     `json:"watchedSeconds"`
	CompletionRate float64 `json:"completionRate"`
	DeviceID       string  `json:"deviceId"`
}

// ReportWatch POSTs to {base}/{kind}s/{id}/watch.
func (c *HTTPClient) ReportWatch(ctx context.Context, r WatchReport) (Result, error) {
	if r.ContentID == "" {
		return Result{}, fmt.Errorf("content id required")
	}
	if !r.Kind.Valid() {
		return Result{}, fmt.Errorf("unknown content kind %q", r.Kind)
	}

	body, err := json.Marshal(watchRequest{
		WatchedSeconds: r.WatchedSeconds,
		CompletionRate: r.CompletionRate,
		DeviceID:       r.DeviceID,
	})
	if err != nil {
		return Result{}, err
	}

	u := fmt.Sprintf("%s/%ss/%s/watch", c.BaseURL, r.Kind, url.PathEscape(r.ContentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "reelwatch/1.0")
	if r.EventID != "" {
		req.Header.Set("Idempotency-Key", r.EventID)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &StatusError{StatusCode: resp.StatusCode, Body: string(b[:min(len(b), 200)])}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return Result{}, nil
	}

	var out Result
	if err := json.Unmarshal(b, &out); err != nil {
		return Result{}, fmt.Errorf("watch report: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	return out, nil
}
