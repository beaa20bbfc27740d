package otel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Strob0t/TaskRelay/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OTEL{}, "taskrelay")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewMetricsFrom(mp.Meter(meterName))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	m.RecordOutcome(ctx, "sent", 20*time.Millisecond)
	m.RecordOutcome(ctx, "ignored", time.Millisecond)
	m.RecordUpstream(ctx, "wrike", "get_task", nil)
	m.RecordUpstream(ctx, "webex", "send", errors.New("boom"))
	m.RecordCache(ctx, true)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
		}
	}
	for _, want := range []string{
		"taskrelay.relay.outcomes",
		"taskrelay.relay.duration_seconds",
		"taskrelay.upstream.calls",
		"taskrelay.contacts.cache_lookups",
	} {
		if !names[want] {
			t.Errorf("expected metric %s to be collected, got %v", want, names)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordOutcome(context.Background(), "sent", time.Second)
	m.RecordUpstream(context.Background(), "wrike", "get_task", nil)
	m.RecordCache(context.Background(), false)
}

func TestHTTPMiddlewarePassesThrough(t *testing.T) {
	h := HTTPMiddleware("taskrelay")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected wrapped handler status, got %d", rec.Code)
	}
}

func TestTransportDefaultsBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Transport(nil)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestEndSpanRecordsError(t *testing.T) {
	_, span := StartUpstreamSpan(context.Background(), "webex", "send")
	EndSpan(span, errors.New("webex API 500"))
}
