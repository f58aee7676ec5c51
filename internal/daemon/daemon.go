package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"aidaemon/internal/protocol"
	"aidaemon/internal/provider"
	"aidaemon/pkg/types"
)

// Config carries the daemon's optional collaborators. Zero values are valid.
type Config struct {
	// Logger receives diagnostics. nil disables logging.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events. nil drops them.
	Publisher EventPublisher
	// Metrics records counters. nil disables instrumentation.
	Metrics *Metrics
}

// Daemon reads commands, dispatches them against State, and writes responses.
type Daemon struct {
	state   *State
	prov    provider.Provider
	enc     *protocol.Encoder
	log     zerolog.Logger
	pub     EventPublisher
	metrics *Metrics

	mu       sync.Mutex
	inflight context.CancelFunc // cancels the current generation, if any
}

// New constructs a Daemon writing responses to out.
func New(p provider.Provider, out io.Writer, cfg Config) *Daemon {
	d := &Daemon{
		state:   NewState(),
		prov:    p,
		enc:     protocol.NewEncoder(out),
		log:     zerolog.Nop(),
		pub:     noopPublisher{},
		metrics: cfg.Metrics,
	}
	if cfg.Logger != nil {
		d.log = *cfg.Logger
	}
	if cfg.Publisher != nil {
		d.pub = cfg.Publisher
	}
	return d
}

// State exposes the daemon state for inspection.
func (d *Daemon) State() *State { return d.state }

// Run emits the ready line, then processes input lines one at a time until a
// shutdown command, a signal, or end of input. It returns nil on a clean stop
// and an error only when input cannot be read or output cannot be written.
func (d *Daemon) Run(ctx context.Context, in io.Reader) error {
	if err := d.emit(types.Ready()); err != nil {
		return stopped(err)
	}
	d.log.Info().Msg("daemon ready")
	r := protocol.NewReader(in)
	for d.state.Running() {
		line, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// end of input stops the loop without a shutdown line, and a
				// signal arriving from here on writes nothing either
				d.state.Stop()
				d.log.Info().Msg("input closed")
				return d.enc.Close()
			}
			return fmt.Errorf("read command: %w", err)
		}
		if err := d.handleLine(ctx, line); err != nil {
			return stopped(err)
		}
	}
	return nil
}

// stopped maps a write after the terminal line to a clean stop.
func stopped(err error) error {
	if errors.Is(err, protocol.ErrSealed) {
		return nil
	}
	return err
}

// handleLine decodes and dispatches one line. Every failure except an output
// error becomes exactly one error response.
func (d *Daemon) handleLine(ctx context.Context, line []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Msg("command handler panicked")
			err = d.emit(types.Error(fmt.Sprintf("Unexpected error: %v", r)))
		}
	}()

	cmd, derr := protocol.Decode(line)
	if derr != nil {
		d.metrics.command("invalid")
		d.log.Warn().Err(derr).Msg("rejecting input line")
		return d.emit(types.Error(derr.Error()))
	}

	switch c := cmd.(type) {
	case types.UnknownCommand:
		d.metrics.command("unknown")
		uerr := &UnknownCommandError{Type: c.Name}
		d.log.Warn().Err(uerr).Msg("unknown command")
		return d.emit(types.Error(uerr.Error()))
	default:
		d.metrics.command(string(cmd.CommandType()))
		d.log.Debug().Str("type", string(cmd.CommandType())).Msg("command")
	}

	switch c := cmd.(type) {
	case types.LoadModelCommand:
		return d.emit(d.handleLoad(ctx, c.ModelPath))
	case types.GenerateCommand:
		return d.handleGenerate(ctx, c)
	case types.StatusCommand:
		return d.emit(d.status())
	case types.ShutdownCommand:
		return d.handleShutdown()
	}
	return nil
}

// status is a pure read of State.
func (d *Daemon) status() types.StatusResponse {
	resp := types.StatusResponse{
		Type:        types.ResponseStatus,
		Running:     d.state.Running(),
		ModelLoaded: d.state.Loaded(),
	}
	if p, ok := d.state.ModelPath(); ok {
		resp.ModelPath = &p
	}
	return resp
}

func (d *Daemon) emit(r types.Response) error { return d.enc.Encode(r) }

// Close releases the resident model. Call after Run returns, from the same
// goroutine. A Load still in flight when Close runs fails and frees what it
// built.
func (d *Daemon) Close() error {
	m := d.state.release()
	if m == nil {
		return nil
	}
	d.metrics.unloaded()
	return m.Close()
}
