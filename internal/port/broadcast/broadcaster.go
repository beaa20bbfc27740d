// Package broadcast defines the port for pushing relay events to live clients.
package broadcast

import "context"

// Event types pushed to live-feed clients.
const (
	EventRelaySent    = "relay.sent"
	EventRelayIgnored = "relay.ignored"
	EventRelayFailed  = "relay.failed"
)

// Broadcaster sends events to all connected clients without blocking on
// slow receivers.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
