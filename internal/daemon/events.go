package daemon

// Event names published by the daemon.
const (
	EventLoadStart         = "load_start"
	EventLoadDone          = "load_done"
	EventLoadCached        = "load_cached"
	EventLoadFailed        = "load_failed"
	EventGenerateStart     = "generate_start"
	EventGenerateDone      = "generate_done"
	EventGenerateCancelled = "generate_cancelled"
	EventGenerateFailed    = "generate_failed"
	EventShutdown          = "shutdown"
)

// Event represents a daemon lifecycle event.
// Minimal and stable: name + model path and optional fields via key/values.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// EventPublisher receives events from the daemon. Implementations should be
// lightweight and non-blocking; Publish must not panic. Publish may be called
// from the signal path concurrently with the loop.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
