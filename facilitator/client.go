// Package facilitator implements the client side of the x402 facilitator
// verify protocol: a synchronous POST /verify exchange with a bounded
// timeout and a single retry on transport-level failures.
package facilitator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paygate-labs/x402-verify-go/types"
	"github.com/paygate-labs/x402-verify-go/x402err"
)

// DefaultURL is the facilitator used when none is configured.
const DefaultURL = "https://x402.org/facilitator"

// DefaultTimeout bounds one verify round trip.
const DefaultTimeout = 10 * time.Second

// maxResponseSize caps how much of a facilitator response is read.
const maxResponseSize = 1 << 20

// Client is a facilitator verify client. It is safe for concurrent use;
// the underlying http.Client pools connections across calls.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithAPIKey sets the X-API-Key header sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the facilitator at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := validateURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Verify asks the facilitator whether payload satisfies requirements.
//
// A well-formed "invalid" answer is returned as a VerifyResponse with
// IsValid false. Connection failures, timeouts and non-2xx statuses are
// x402err.KindFacilitator errors so callers can tell "payment rejected"
// apart from "couldn't ask". One retry is attempted on transport-level
// failures only; a definitive HTTP response is never retried.
func (c *Client) Verify(ctx context.Context, payload types.PaymentPayload, requirements types.PaymentRequirements) (types.VerifyResponse, error) {
	body, err := json.Marshal(types.VerifyRequest{
		X402Version:         types.X402Version1,
		PaymentPayload:      payload,
		PaymentRequirements: requirements,
	})
	if err != nil {
		return types.VerifyResponse{}, x402err.Internal("failed to marshal verify request: %v", err)
	}

	resp, err := c.post(ctx, body)
	if err != nil && retryable(ctx, err) {
		resp, err = c.post(ctx, body)
	}
	if err != nil {
		return types.VerifyResponse{}, x402err.Facilitator(err, "facilitator unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return types.VerifyResponse{}, x402err.Facilitator(err, "failed to read facilitator response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.VerifyResponse{}, x402err.Newf(x402err.KindFacilitator,
			"facilitator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result types.VerifyResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return types.VerifyResponse{}, x402err.Facilitator(err, "facilitator response is not valid JSON")
	}
	return result, nil
}

// post performs one verify attempt with a fresh request body and its own
// timeout.
func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	// The response body must outlive the attempt context.
	resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelReadCloser releases the attempt context when the body is closed.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// retryable reports whether a failed attempt is worth one more try.
// Transport-level failures (refused, reset, per-attempt timeout) are;
// a caller-cancelled context is not.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return err != nil
}

// validateURL checks the facilitator URL shape before any request is made.
func validateURL(url string) error {
	if url == "" {
		return x402err.InvalidInput("facilitator URL is empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return x402err.InvalidInput("facilitator URL must start with http:// or https://")
	}
	if strings.ContainsAny(url, " \t\r\n") {
		return x402err.InvalidInput("facilitator URL contains whitespace")
	}
	return nil
}
