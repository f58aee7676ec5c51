package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"aidaemon/internal/provider"
)

// createModelDir creates a directory that stands in for a model on disk.
func createModelDir(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(p, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p, "model.gguf"), []byte("gguf"), 0o644))
	canon, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return canon
}

type fakeModel struct {
	path   string
	closed atomic.Bool
}

func (m *fakeModel) Close() error {
	m.closed.Store(true)
	return nil
}

// fakeTokenizer counts whitespace-separated words.
type fakeTokenizer struct{ err error }

func (t fakeTokenizer) CountTokens(s string) (int, error) {
	if t.err != nil {
		return 0, t.err
	}
	return len(strings.Fields(s)), nil
}

// fakeProvider is a lightweight in-memory provider used for tests.
type fakeProvider struct {
	mu        sync.Mutex
	loadErr   error
	genErr    error
	streamErr error
	tokErr    error
	panicGen  bool
	tokens    []string
	// onPull runs before token i is handed out
	onPull func(i int)
	// onLoad runs before the model is built
	onLoad func()

	loads   []string
	params  []provider.Params
	prompts []string
	models  []*fakeModel
}

func (f *fakeProvider) Load(ctx context.Context, path string) (provider.Model, provider.Tokenizer, error) {
	if f.onLoad != nil {
		f.onLoad()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, path)
	if f.loadErr != nil {
		return nil, nil, f.loadErr
	}
	m := &fakeModel{path: path}
	f.models = append(f.models, m)
	return m, fakeTokenizer{err: f.tokErr}, nil
}

func (f *fakeProvider) Generate(ctx context.Context, m provider.Model, tok provider.Tokenizer, prompt string, params provider.Params) (provider.Stream, error) {
	f.mu.Lock()
	f.params = append(f.params, params)
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.panicGen {
		panic("runtime exploded")
	}
	if f.genErr != nil {
		return nil, f.genErr
	}
	return &sliceStream{ctx: ctx, tokens: f.tokens, err: f.streamErr, onPull: f.onPull}, nil
}

func (f *fakeProvider) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

// sliceStream yields fixed tokens, then optionally fails.
type sliceStream struct {
	ctx    context.Context
	tokens []string
	err    error
	onPull func(int)
	i      int
	cur    string
	done   bool
	closed bool
}

func (s *sliceStream) Next() bool {
	if s.done {
		return false
	}
	if s.onPull != nil {
		s.onPull(s.i)
	}
	if s.ctx.Err() != nil || s.i >= len(s.tokens) {
		s.done = true
		return false
	}
	s.cur = s.tokens[s.i]
	s.i++
	return true
}

func (s *sliceStream) Token() string { return s.cur }

func (s *sliceStream) Err() error {
	if !s.done {
		return nil
	}
	if s.ctx.Err() != nil {
		return s.ctx.Err()
	}
	return s.err
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

func lines(cmds ...string) string { return strings.Join(cmds, "\n") + "\n" }

// decodeLines parses every output line as one JSON object.
func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var res []map[string]any
	for _, l := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m), "line is not standalone JSON: %q", l)
		res = append(res, m)
	}
	return res
}

func respTypes(resps []map[string]any) []string {
	out := make([]string, len(resps))
	for i, r := range resps {
		if v, ok := r["type"].(string); ok {
			out[i] = v
		}
	}
	return out
}

// harness wires a Daemon to an in-memory output buffer.
type harness struct {
	d   *Daemon
	p   *fakeProvider
	out *bytes.Buffer
	pub *MemoryPublisher
	m   *Metrics
}

func newHarness(t *testing.T, p *fakeProvider) *harness {
	t.Helper()
	if p == nil {
		p = &fakeProvider{}
	}
	h := &harness{p: p, out: &bytes.Buffer{}, pub: NewMemoryPublisher(), m: NewMetrics()}
	h.d = New(p, h.out, Config{Publisher: h.pub, Metrics: h.m})
	return h
}

func (h *harness) run(t *testing.T, input string) []map[string]any {
	t.Helper()
	require.NoError(t, h.d.Run(context.Background(), strings.NewReader(input)))
	return decodeLines(t, h.out.String())
}

func (h *harness) rawLines() []string {
	return strings.Split(strings.TrimSuffix(h.out.String(), "\n"), "\n")
}
