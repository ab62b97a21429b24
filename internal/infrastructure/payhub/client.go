package payhub

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/courtfunds/payhub-bridge/internal/application/dispatch"
)

const paymentRecordsPath = "/payment-records"

// Client submits payment-record payloads to PayHub over HTTP. One client is
// shared per process; connections are reused across payloads of a dispatch.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
	}
}

// Submit posts one JSON payload. The response body is read fully into memory
// exactly once so the classifier can attempt a JSON parse and still fall
// back to the raw text. A per-request deadline applies; its expiry is
// surfaced as the transport error "timeout".
func (c *Client) Submit(ctx context.Context, body []byte, userToken, serviceToken string) (*dispatch.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+paymentRecordsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The caller's token is forwarded verbatim, Bearer prefix included.
	req.Header.Set("Authorization", userToken)
	req.Header.Set("ServiceAuthorization", serviceToken)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.New("timeout")
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &dispatch.Result{StatusCode: resp.StatusCode, Body: raw}, nil
}
