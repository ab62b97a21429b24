package s2s

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const leasePath = "/lease"

// TokenGenerator leases one-shot service-to-service tokens from the
// credential issuer. The issuer may be rate-limited, so callers mint at most
// one token per dispatch.
type TokenGenerator struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func NewTokenGenerator(baseURL string, httpClient *http.Client, timeout time.Duration) *TokenGenerator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
	}
}

// MintServiceToken leases a token and returns it as an opaque string.
// A non-2xx response or an empty body is an error; the caller treats either
// as fatal for the whole dispatch.
func (g *TokenGenerator) MintServiceToken(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+leasePath, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("lease token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("issuer returned status %d", resp.StatusCode)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("issuer returned empty token")
	}
	return token, nil
}
