package protocol

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"aidaemon/pkg/types"
)

// Encoder writes one response per line and flushes after every line.
// It is safe for concurrent use: the signal path may write the terminal
// shutdown line while the main loop is streaming.
type Encoder struct {
	mu     sync.Mutex
	w      *bufio.Writer
	enc    *json.Encoder
	sealed bool
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &Encoder{w: bw, enc: enc}
}

// Encode writes r as one line. It returns ErrSealed once Seal has been called.
func (e *Encoder) Encode(r types.Response) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sealed {
		return ErrSealed
	}
	return e.write(r)
}

// Seal writes r as the final line; every later Encode or Seal returns ErrSealed.
func (e *Encoder) Seal(r types.Response) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sealed {
		return ErrSealed
	}
	e.sealed = true
	return e.write(r)
}

// Close seals the encoder without writing a terminal line. A later Seal
// returns ErrSealed and writes nothing.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sealed = true
	return e.w.Flush()
}

func (e *Encoder) write(r types.Response) error {
	// json.Encoder appends the newline
	if err := e.enc.Encode(r); err != nil {
		return err
	}
	return e.w.Flush()
}
