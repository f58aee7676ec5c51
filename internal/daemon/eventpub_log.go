package daemon

import "github.com/rs/zerolog"

// LogPublisher writes events to a zerolog logger. Failures are logged at
// warn, everything else at info.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(e Event) {
	ev := p.Logger.Info()
	switch e.Name {
	case EventLoadFailed, EventGenerateFailed:
		ev = p.Logger.Warn()
	}
	if e.Model != "" {
		ev = ev.Str("model", e.Model)
	}
	ev.Fields(e.Fields).Str("event", e.Name).Msg("daemon event")
}
