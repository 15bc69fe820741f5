package events

import "context"

// Event types
const (
	EventChangeRequestCreated  = "change_request_created"
	EventChangeRequestResolved = "change_request_resolved"
)

// StreamDualAuth is the channel carrying change-request lifecycle events.
const StreamDualAuth = "events:dual_auth"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}
