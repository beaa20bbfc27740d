// Package webex implements notifier.Notifier for the Webex messages API.
package webex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Strob0t/TaskRelay/internal/adapter/otel"
	"github.com/Strob0t/TaskRelay/internal/port/notifier"
	"github.com/Strob0t/TaskRelay/internal/resilience"
)

const (
	providerName = "webex"
	maxErrorBody = 512
)

// Notifier posts markdown messages to Webex rooms.
type Notifier struct {
	baseURL    string
	token      func() string
	httpClient *http.Client
	breaker    *resilience.Breaker
	limiter    *resilience.Limiter
	metrics    *otel.Metrics
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(n *Notifier) { n.httpClient = hc }
}

// WithBreaker guards every send with b.
func WithBreaker(b *resilience.Breaker) Option {
	return func(n *Notifier) { n.breaker = b }
}

// WithLimiter caps concurrent sends with l.
func WithLimiter(l *resilience.Limiter) Option {
	return func(n *Notifier) { n.limiter = l }
}

// WithMetrics records send counts on m.
func WithMetrics(m *otel.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

// NewNotifier creates a Webex notifier. timeout bounds every send.
func NewNotifier(baseURL string, token func() string, timeout time.Duration, opts ...Option) *Notifier {
	n := &Notifier{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otel.Transport(nil),
		},
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

func (n *Notifier) Name() string { return providerName }

// Send posts one message. There is no retry.
func (n *Notifier) Send(ctx context.Context, msg notifier.Notification) error {
	ctx, span := otel.StartUpstreamSpan(ctx, providerName, "send")
	send := func(ctx context.Context) error {
		return n.limiter.Run(ctx, func(ctx context.Context) error { return n.post(ctx, msg) })
	}

	var err error
	if n.breaker != nil {
		err = n.breaker.Execute(ctx, send)
	} else {
		err = send(ctx)
	}
	n.metrics.RecordUpstream(ctx, providerName, "send", err)
	otel.EndSpan(span, err)
	return err
}

func (n *Notifier) post(ctx context.Context, msg notifier.Notification) error {
	token := ""
	if n.token != nil {
		token = n.token()
	}
	if token == "" {
		return notifier.ErrNotConfigured
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("webex marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webex request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req) //nolint:gosec // URL is built from the configured base URL
	if err != nil {
		return fmt.Errorf("webex send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webex API %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
