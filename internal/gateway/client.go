package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/common"
	"golang.org/x/time/rate"
)

// Client is the sole module performing outbound HTTP calls to the connector
// backend. Every request carries the cookie jar (same-origin session
// continuity), is bounded by the configured timeout, and fails with exactly
// one of two error kinds: *StatusError or *TransportError.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     arbor.ILogger
}

// NewClient creates a gateway client from backend configuration.
func NewClient(config *common.BackendConfig, logger arbor.ILogger) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: config.TimeoutDuration(),
		},
		baseURL:   baseURL,
		userAgent: config.UserAgent,
		limiter:   limiter,
		logger:    logger,
	}, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs one backend call. A non-nil body is JSON-encoded; a
// non-nil out receives the decoded JSON response.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Cause: err}
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError(ctx, method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp, payload)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) classifyTransportError(ctx context.Context, method, path string, err error) error {
	timeout := false
	if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
		timeout = true
	}
	if ctx.Err() == context.DeadlineExceeded {
		timeout = true
	}

	c.logger.Warn().
		Str("method", method).
		Str("path", path).
		Bool("timeout", timeout).
		Err(err).
		Msg("Backend request failed")

	return &TransportError{Cause: err, Timeout: timeout}
}

// newStatusError builds a StatusError from a non-2xx response, pulling the
// message from the backend's structured payload when present. The backend
// uses "message" for auth responses and "detail" for framework errors.
func newStatusError(resp *http.Response, payload []byte) *StatusError {
	statusErr := &StatusError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Payload:    payload,
	}

	var errBody struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &errBody); err == nil {
			if errBody.Message != "" {
				statusErr.Message = errBody.Message
			} else if errBody.Detail != "" {
				statusErr.Message = errBody.Detail
			}
		}
	}
	if statusErr.Message == "" {
		statusErr.Message = fmt.Sprintf("HTTP %d: %s", statusErr.Status, statusErr.StatusText)
	}

	return statusErr
}
