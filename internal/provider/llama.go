//go:build llama

package provider

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"aidaemon/internal/registry"
)

type llamaProvider struct {
	ctxSize int
	threads int
}

// New returns the in-process go-llama.cpp provider.
func New(cfg Config) (Provider, error) {
	return &llamaProvider{ctxSize: cfg.ContextSize, threads: cfg.Threads}, nil
}

// llamaModel owns the loaded model. go-llama.cpp holds one token callback per
// model, so generations on the same handle are serialized.
type llamaModel struct {
	mu sync.Mutex
	l  *llama.LLama
}

func (m *llamaModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.l != nil {
		m.l.Free()
		m.l = nil
	}
	return nil
}

// llamaTokenizer shares the model's vocabulary.
type llamaTokenizer struct{ m *llamaModel }

func (t llamaTokenizer) CountTokens(text string) (int, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.l == nil {
		return 0, errors.New("llama model not initialized")
	}
	n, _, err := t.m.l.TokenizeString(text)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (p *llamaProvider) Load(ctx context.Context, path string) (Model, Tokenizer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, errors.New("model path is empty")
	}
	file, err := registry.Resolve(path)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	mo := []llama.ModelOption{
		llama.SetContext(p.ctxSize),
	}
	l, err := llama.New(file, mo...)
	if err != nil {
		return nil, nil, err
	}
	m := &llamaModel{l: l}
	return m, llamaTokenizer{m: m}, nil
}

func (p *llamaProvider) Generate(ctx context.Context, m Model, _ Tokenizer, prompt string, params Params) (Stream, error) {
	lm, ok := m.(*llamaModel)
	if !ok || lm == nil {
		return nil, errors.New("model handle not created by the llama provider")
	}
	po := mapParamsToPredictOptions(params, p.threads)
	return NewTextStream(ctx, func(ctx context.Context, emit EmitFunc) error {
		lm.mu.Lock()
		defer lm.mu.Unlock()
		if lm.l == nil {
			return errors.New("llama model not initialized")
		}
		lm.l.SetTokenCallback(func(tok string) bool {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			return emit(tok)
		})
		// Predict blocks until done or the callback returns false
		_, err := lm.l.Predict(prompt, po...)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}), nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// mapParamsToPredictOptions converts sampling params into go-llama.cpp options.
func mapParamsToPredictOptions(params Params, threads int) []llama.PredictOption {
	return []llama.PredictOption{
		llama.SetTokens(max(1, params.MaxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTopP(float32(params.TopP)),
		llama.SetTemperature(float32(params.Temperature)),
		llama.SetPenalty(float32(params.RepetitionPenalty)),
	}
}
