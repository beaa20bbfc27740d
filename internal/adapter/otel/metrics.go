package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "taskrelay"

// Metrics holds the relay's metric instruments.
type Metrics struct {
	EventsReceived metric.Int64Counter
	Outcomes       metric.Int64Counter
	RelayDuration  metric.Float64Histogram
	UpstreamCalls  metric.Int64Counter
	CacheLookups   metric.Int64Counter
}

// NewMetrics creates all instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsFrom(otel.Meter(meterName))
}

// NewMetricsFrom creates all instruments on meter.
func NewMetricsFrom(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.EventsReceived, err = meter.Int64Counter("taskrelay.events.received",
		metric.WithDescription("Webhook events accepted for relay"))
	if err != nil {
		return nil, err
	}

	m.Outcomes, err = meter.Int64Counter("taskrelay.relay.outcomes",
		metric.WithDescription("Relay outcomes by kind"))
	if err != nil {
		return nil, err
	}

	m.RelayDuration, err = meter.Float64Histogram("taskrelay.relay.duration_seconds",
		metric.WithDescription("End-to-end relay duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.UpstreamCalls, err = meter.Int64Counter("taskrelay.upstream.calls",
		metric.WithDescription("Outbound API calls by api and result"))
	if err != nil {
		return nil, err
	}

	m.CacheLookups, err = meter.Int64Counter("taskrelay.contacts.cache_lookups",
		metric.WithDescription("Contact-name cache lookups by result"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordOutcome counts one relay outcome and its duration.
func (m *Metrics) RecordOutcome(ctx context.Context, kind string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.Outcomes.Add(ctx, 1, attrs)
	m.RelayDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordUpstream counts one outbound call.
func (m *Metrics) RecordUpstream(ctx context.Context, api, op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.UpstreamCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("op", op),
		attribute.String("result", result),
	))
}

// RecordCache counts a contact-cache hit or miss.
func (m *Metrics) RecordCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
