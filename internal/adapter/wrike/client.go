// Package wrike implements taskprovider.Provider against the Wrike REST API v4.
package wrike

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Strob0t/TaskRelay/internal/adapter/otel"
	"github.com/Strob0t/TaskRelay/internal/domain"
	"github.com/Strob0t/TaskRelay/internal/resilience"
)

const (
	apiName = "wrike"

	// maxErrorBody caps how much of an error response is quoted.
	maxErrorBody = 512
	// maxResponseBody caps how much of any response is read.
	maxResponseBody = 4 << 20
)

// ErrNoToken is returned when no bearer token is available.
var ErrNoToken = errors.New("wrike: token not configured")

// Client talks to the Wrike REST API. The token is read on every request
// so rotated tokens apply without rebuilding the client.
type Client struct {
	baseURL    string
	token      func() string
	httpClient *http.Client
	breaker    *resilience.Breaker
	metrics    *otel.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker guards every call with b.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithMetrics records upstream call counts on m.
func WithMetrics(m *otel.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Wrike client. timeout bounds every request.
func NewClient(baseURL string, token func() string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otel.Transport(nil),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope is the common Wrike response wrapper.
type envelope[T any] struct {
	Kind string `json:"kind"`
	Data []T    `json:"data"`
}

// call runs one request through the breaker, tracing and metrics.
func (c *Client) call(ctx context.Context, op, method, path string, form url.Values) ([]byte, error) {
	ctx, span := otel.StartUpstreamSpan(ctx, apiName, op)
	var body []byte
	run := func(ctx context.Context) error {
		var err error
		body, err = c.do(ctx, method, path, form)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, run)
	} else {
		err = run(ctx)
	}
	c.metrics.RecordUpstream(ctx, apiName, op, err)
	otel.EndSpan(span, err)
	return body, err
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	token := ""
	if c.token != nil {
		token = c.token()
	}
	if token == "" {
		return nil, ErrNoToken
	}

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is built from the configured base URL
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("wrike API 404: %w", domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("wrike API %d: %s", resp.StatusCode, truncate(respBody))
	}
	return respBody, nil
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

func decode[T any](body []byte) ([]T, error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return env.Data, nil
}
