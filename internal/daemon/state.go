package daemon

import (
	"sync"
	"sync/atomic"

	"aidaemon/internal/provider"
)

// State records which model is resident. model and tokenizer are present
// together or not at all, and modelPath is set iff model is.
//
// The loop goroutine is the only one that installs a model; Close releases it
// once the loop is done. mu keeps that handoff ordered, and once released the
// State refuses further installs. running is the one field the signal path
// touches, hence atomic.
type State struct {
	mu        sync.Mutex
	model     provider.Model
	tokenizer provider.Tokenizer
	modelPath string
	released  bool
	running   atomic.Bool
}

// NewState returns a running State with no model.
func NewState() *State {
	s := &State{}
	s.running.Store(true)
	return s
}

// Running reports the run flag. Every call observes the latest Stop.
func (s *State) Running() bool { return s.running.Load() }

// Stop clears the run flag. It reports whether this call performed the transition.
func (s *State) Stop() bool { return s.running.CompareAndSwap(true, false) }

// Loaded reports whether a model is resident.
func (s *State) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model != nil
}

// ModelPath returns the canonical path of the resident model.
func (s *State) ModelPath() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return "", false
	}
	return s.modelPath, true
}

func (s *State) handles() (provider.Model, provider.Tokenizer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model, s.tokenizer
}

// install makes a fully constructed pair resident and returns the previous
// model so the caller can release it. After release it installs nothing and
// reports false; the caller then owns m.
func (s *State) install(m provider.Model, t provider.Tokenizer, path string) (provider.Model, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, false
	}
	old := s.model
	s.model, s.tokenizer, s.modelPath = m, t, path
	return old, true
}

// release clears the resident pair for good and returns the model for closing.
func (s *State) release() provider.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.model
	s.model, s.tokenizer, s.modelPath = nil, nil, ""
	s.released = true
	return old
}
