package daemon

import (
	"bytes"
	"context"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterrupt_WritesSingleShutdownLine(t *testing.T) {
	h := newHarness(t, nil)
	h.d.Interrupt(syscall.SIGTERM)
	h.d.Interrupt(syscall.SIGINT)
	resps := decodeLines(t, h.out.String())
	require.Equal(t, []string{"shutdown"}, respTypes(resps))
	assert.False(t, h.d.State().Running())
}

func TestInterrupt_ThenShutdownCommand(t *testing.T) {
	h := newHarness(t, nil)
	// a shutdown command handled after the signal finds the encoder sealed
	h.d.Interrupt(os.Interrupt)
	require.NoError(t, h.d.handleShutdown())
	assert.Equal(t, 1, strings.Count(h.out.String(), `"shutdown"`))
}

func TestInterrupt_LoopNeverStartsAfterSignal(t *testing.T) {
	h := newHarness(t, nil)
	h.d.Interrupt(os.Interrupt)
	require.NoError(t, h.d.Run(context.Background(), strings.NewReader(`{"type":"status"}`+"\n")))
	assert.Equal(t, []string{`{"type":"shutdown","message":"Daemon shutting down"}`}, h.rawLines())
}

func TestInterrupt_CloseDuringSlowLoad(t *testing.T) {
	dir := createModelDir(t, "slow")
	entered := make(chan struct{})
	proceed := make(chan struct{})
	p := &fakeProvider{onLoad: func() {
		close(entered)
		<-proceed
	}}
	h := newHarness(t, p)

	done := make(chan error, 1)
	go func() {
		done <- h.d.Run(context.Background(), strings.NewReader(loadLine(dir)+"\n"))
	}()
	<-entered
	// runs concurrently with the load, the way a signal would
	h.d.Interrupt(os.Interrupt)
	require.NoError(t, h.d.Close())
	close(proceed)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.False(t, h.d.State().Loaded())
	require.Len(t, p.models, 1)
	assert.True(t, p.models[0].closed.Load(), "model built after Close was not freed")
	assert.Equal(t, 1, strings.Count(h.out.String(), `"shutdown"`))
}

func TestInterrupt_AfterEndOfInputWritesNothing(t *testing.T) {
	h := newHarness(t, nil)
	resps := h.run(t, `{"type":"status"}`+"\n")
	require.Equal(t, []string{"ready", "status"}, respTypes(resps))
	h.d.Interrupt(syscall.SIGTERM)
	assert.NotContains(t, h.out.String(), `"shutdown"`)
}

func TestWatchSignals(t *testing.T) {
	var logs bytes.Buffer
	l := zerolog.New(&logs)
	var out bytes.Buffer
	d := New(&fakeProvider{}, &out, Config{Logger: &l})

	sigs := make(chan os.Signal, 1)
	exited := make(chan struct{})
	go d.WatchSignals(sigs, func() { close(exited) })
	sigs <- syscall.SIGTERM
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("exit not called")
	}
	assert.Equal(t, `{"type":"shutdown","message":"Daemon shutting down"}`+"\n", out.String())
	assert.Contains(t, logs.String(), "terminated")
}

func TestWatchSignals_ClosedChannel(t *testing.T) {
	var out bytes.Buffer
	d := New(&fakeProvider{}, &out, Config{})
	sigs := make(chan os.Signal)
	close(sigs)
	called := false
	d.WatchSignals(sigs, func() { called = true })
	assert.False(t, called)
	assert.Empty(t, out.String())
	assert.True(t, d.State().Running())
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := LogPublisher{Logger: zerolog.New(&buf)}
	p.Publish(Event{Name: EventLoadFailed, Model: "/m", Fields: map[string]any{"error": "boom"}})
	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"event":"load_failed"`)
	assert.Contains(t, out, `"model":"/m"`)
	assert.Contains(t, out, `"error":"boom"`)
}
