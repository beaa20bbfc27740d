package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Strob0t/TaskRelay/internal/domain/relay"
	"github.com/Strob0t/TaskRelay/internal/domain/webhook"
	"github.com/Strob0t/TaskRelay/internal/resilience"
)

const rootStatus = "TaskRelay webhook relay is running"

// Relayer processes one webhook event.
type Relayer interface {
	Relay(ctx context.Context, ev webhook.Event) (relay.Outcome, error)
}

// BreakerState reports the state of a named circuit breaker.
type BreakerState interface {
	Name() string
	State() resilience.State
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	Relay     Relayer
	Rooms     int
	Breakers  []BreakerState
	BodyLimit int64
}

// Root reports that the service is up.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": rootStatus})
}

// Health reports the room count and breaker states.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"rooms":  h.Rooms,
	}
	for _, b := range h.Breakers {
		resp[b.Name()+"_breaker"] = string(b.State())
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleWrikeWebhook handles POST /wrike-webhook. Handshake requests carrying
// X-Hook-Secret get the secret echoed back and nothing else happens.
func (h *Handlers) HandleWrikeWebhook(w http.ResponseWriter, r *http.Request) {
	if secret := r.Header.Get(webhook.HeaderHookSecret); secret != "" {
		w.Header().Set(webhook.HeaderHookSecret, secret)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, secret)
		return
	}

	body, ok := readBody(w, r, h.BodyLimit)
	if !ok {
		return
	}

	ctx := r.Context()
	ev, err := webhook.ParseFirst(body)
	if err != nil {
		slog.WarnContext(ctx, "invalid wrike webhook", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.InfoContext(ctx, "wrike webhook received",
		"task_id", ev.TaskID,
		"event_type", ev.EventType,
		"webhook_id", ev.WebhookID,
	)

	out, err := h.Relay.Relay(ctx, ev)
	if err != nil {
		writeRelayError(w, err)
		return
	}
	if out.Kind == relay.KindIgnored {
		writeJSON(w, http.StatusOK, map[string]bool{"ignored": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// writeRelayError maps a relay failure to 503 for an open breaker and 502
// otherwise. The message is surfaced to the caller.
func writeRelayError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, resilience.ErrCircuitOpen) {
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, err.Error())
}
