// Package daemon is the command loop of the resident inference process. It is
// structured into small files by concern:
//
//   - daemon.go: Daemon type, constructor, the read/dispatch loop.
//   - state.go: State, the single record of which model is resident.
//   - load.go: load_model handling and the resident-model cache check.
//   - generate.go: generate handling and token streaming.
//   - shutdown.go: shutdown command and the signal path.
//   - errors.go: error kinds and predicates (IsPathError, IsLoadError, ...).
//   - events.go, eventpub_*.go: lifecycle events and publishers.
//   - metrics.go: prometheus instrumentation.
//
// Concurrency: one goroutine runs Run, installs models, and afterwards calls
// Close. The signal path (Interrupt) never touches the model handles: it may
// clear the run flag, cancel the in-flight generation, and write the terminal
// shutdown line, and nothing else.
package daemon
