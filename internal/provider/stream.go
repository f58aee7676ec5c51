package provider

import (
	"context"
	"sync"
)

// EmitFunc hands one token to the consumer. It returns false when the
// consumer has stopped listening; the producer should then return promptly.
type EmitFunc func(tok string) bool

// NewCallbackStream adapts a push-style producer (a runtime that reports
// tokens through a callback) into a pull Stream. run executes on its own
// goroutine and is handed tokens back to the caller one at a time: it never
// gets ahead of the consumer by more than one token.
func NewCallbackStream(ctx context.Context, run func(ctx context.Context, emit EmitFunc) error) Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &callbackStream{
		toks:   make(chan string),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer close(s.done)
		s.err = run(ctx, func(tok string) bool {
			select {
			case s.toks <- tok:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return s
}

type callbackStream struct {
	toks   chan string
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once

	cur string
	err error // written by the producer before done is closed
}

func (s *callbackStream) Next() bool {
	select {
	case tok := <-s.toks:
		s.cur = tok
		return true
	case <-s.done:
		return false
	}
}

func (s *callbackStream) Token() string { return s.cur }

func (s *callbackStream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

func (s *callbackStream) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}
