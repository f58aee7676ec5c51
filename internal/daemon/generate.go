package daemon

import (
	"context"
	"time"

	"github.com/google/uuid"

	"aidaemon/internal/provider"
	"aidaemon/pkg/types"
)

// handleGenerate streams one token line per provider token, in provider order,
// then exactly one terminal line: complete on success, error on provider
// failure. When the run flag is cleared mid-stream it stops without a terminal
// line; the partial stream is the cancellation signature.
func (d *Daemon) handleGenerate(ctx context.Context, cmd types.GenerateCommand) error {
	model, tok := d.state.handles()
	if model == nil {
		return d.emit(types.Error(types.MessageNoModelLoaded))
	}
	modelPath, _ := d.state.ModelPath()
	id := uuid.NewString()
	log := d.log.With().Str("request_id", id).Logger()

	genCtx, cancel := context.WithCancel(ctx)
	d.setInflight(cancel)
	defer d.clearInflight()

	params := provider.Params{
		MaxTokens:         cmd.MaxTokens,
		Temperature:       cmd.Temperature,
		TopP:              cmd.TopP,
		RepetitionPenalty: cmd.RepetitionPenalty,
	}
	start := time.Now()
	d.pub.Publish(Event{Name: EventGenerateStart, Model: modelPath, Fields: map[string]any{
		"request_id": id,
		"max_tokens": cmd.MaxTokens,
	}})
	log.Debug().Int("max_tokens", cmd.MaxTokens).Float64("temperature", cmd.Temperature).
		Float64("top_p", cmd.TopP).Float64("repetition_penalty", cmd.RepetitionPenalty).Msg("generation started")

	stream, err := d.prov.Generate(genCtx, model, tok, cmd.Prompt, params)
	if err != nil {
		return d.failGeneration(id, modelPath, start, &GenerateError{Err: err})
	}
	defer stream.Close()

	n := 0
	for stream.Next() {
		if !d.state.Running() {
			break
		}
		if err := d.emit(types.Token(stream.Token())); err != nil {
			return err
		}
		d.metrics.token()
		n++
	}
	if !d.state.Running() {
		d.metrics.generation("cancelled", start)
		d.pub.Publish(Event{Name: EventGenerateCancelled, Model: modelPath, Fields: map[string]any{"request_id": id, "tokens": n}})
		log.Info().Int("tokens", n).Msg("generation cancelled")
		return nil
	}
	if err := stream.Err(); err != nil {
		return d.failGeneration(id, modelPath, start, &GenerateError{Err: err})
	}

	done := types.CompleteResponse{Type: types.ResponseComplete, Message: types.MessageComplete, Tokens: n}
	if c, err := tok.CountTokens(cmd.Prompt); err == nil {
		done.PromptTokens = &c
	} else {
		log.Debug().Err(err).Msg("prompt token count unavailable")
	}
	d.metrics.generation("complete", start)
	d.pub.Publish(Event{Name: EventGenerateDone, Model: modelPath, Fields: map[string]any{
		"request_id":  id,
		"tokens":      n,
		"duration_ms": time.Since(start).Milliseconds(),
	}})
	return d.emit(done)
}

func (d *Daemon) failGeneration(id, modelPath string, start time.Time, err *GenerateError) error {
	d.metrics.generation("error", start)
	d.pub.Publish(Event{Name: EventGenerateFailed, Model: modelPath, Fields: map[string]any{"request_id": id, "error": err.Error()}})
	return d.emit(types.Error(err.Error()))
}

func (d *Daemon) setInflight(cancel context.CancelFunc) {
	d.mu.Lock()
	d.inflight = cancel
	d.mu.Unlock()
}

func (d *Daemon) clearInflight() {
	d.mu.Lock()
	cancel := d.inflight
	d.inflight = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// cancelInflight stops the provider of the current generation, if any.
func (d *Daemon) cancelInflight() {
	d.mu.Lock()
	cancel := d.inflight
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
