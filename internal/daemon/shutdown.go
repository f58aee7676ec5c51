package daemon

import (
	"errors"
	"os"

	"aidaemon/internal/protocol"
	"aidaemon/pkg/types"
)

// handleShutdown clears the run flag and writes the terminal line. The loop
// ends after it returns; process exit is the caller's business.
func (d *Daemon) handleShutdown() error {
	d.state.Stop()
	d.pub.Publish(Event{Name: EventShutdown, Fields: map[string]any{"source": "command"}})
	d.log.Info().Msg("shutdown requested")
	if err := d.enc.Seal(types.Shutdown()); err != nil && !errors.Is(err, protocol.ErrSealed) {
		return err
	}
	return nil
}

// Interrupt is the signal path. It may run at any point of the loop,
// including mid-stream: it clears the run flag, cancels the in-flight
// generation, and writes the terminal shutdown line. It never blocks on the
// provider and is safe to call more than once.
func (d *Daemon) Interrupt(sig os.Signal) {
	d.state.Stop()
	d.cancelInflight()
	name := "unknown"
	if sig != nil {
		name = sig.String()
	}
	d.pub.Publish(Event{Name: EventShutdown, Fields: map[string]any{"source": "signal", "signal": name}})
	d.log.Info().Str("signal", name).Msg("shutting down on signal")
	if err := d.enc.Seal(types.Shutdown()); err != nil && !errors.Is(err, protocol.ErrSealed) {
		d.log.Error().Err(err).Msg("writing shutdown response")
	}
}

// WatchSignals blocks until a signal arrives on sigs, runs Interrupt, then
// calls exit. It returns without side effects if sigs is closed first.
func (d *Daemon) WatchSignals(sigs <-chan os.Signal, exit func()) {
	sig, ok := <-sigs
	if !ok {
		return
	}
	d.Interrupt(sig)
	if exit != nil {
		exit()
	}
}
