// Package provider defines the contract between the daemon and the inference
// runtime: load a model from a path, then generate tokens from it as a pull stream.
//
// Build tags and runtimes:
//
//   - In-process llama: uses the go-llama.cpp binding. Enabled with `-tags=llama`.
//     Files: llama.go, llama_cgo.go (linker rpath hints).
//   - Without the tag, llama_stub.go makes New fail with a dependency-unavailable
//     error so the daemon reports it once at startup and exits.
package provider

import "context"

// Provider is the inference runtime. Implementations own all tensor math and tokenization.
type Provider interface {
	// Load materializes the model at path. The returned handles are owned by the caller.
	Load(ctx context.Context, path string) (Model, Tokenizer, error)
	// Generate starts producing tokens for prompt. Tokens are pulled from the
	// returned Stream; canceling ctx ends the stream early.
	Generate(ctx context.Context, m Model, tok Tokenizer, prompt string, params Params) (Stream, error)
}

// Model is an opaque loaded model handle.
type Model interface {
	// Close releases the model's memory. The handle is unusable afterwards.
	Close() error
}

// Tokenizer is the tokenizer paired with a Model.
type Tokenizer interface {
	// CountTokens returns how many tokens text encodes to.
	CountTokens(text string) (int, error)
}

// Params are sampling parameters passed through verbatim; ranges are not validated here.
type Params struct {
	MaxTokens         int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
}

// Stream is a finite, non-restartable sequence of generated tokens.
//
//	for s.Next() {
//		use(s.Token())
//	}
//	if err := s.Err(); err != nil { ... }
type Stream interface {
	// Next advances to the next token, blocking until it is available.
	// It returns false when the sequence is exhausted or failed.
	Next() bool
	// Token returns the token produced by the last successful Next.
	Token() string
	// Err returns the failure that ended the stream, if any.
	Err() error
	// Close stops generation and waits for the producer to return.
	Close() error
}

// Config holds runtime tunables for providers that need them.
type Config struct {
	ContextSize int
	Threads     int
}
