package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"aidaemon/internal/common/fsutil"
	"aidaemon/pkg/types"
)

// Load makes the model at path resident, or reports that it already is.
// On any failure State is left exactly as it was.
func (d *Daemon) Load(ctx context.Context, path string) (types.LoadSuccess, error) {
	expanded, err := fsutil.ExpandHome(path)
	if err != nil {
		return types.LoadSuccess{}, &LoadError{Path: path, Err: err}
	}
	if !fsutil.PathExists(expanded) {
		return types.LoadSuccess{}, &PathError{Path: expanded}
	}
	canon, err := fsutil.Canonical(expanded)
	if err != nil {
		return types.LoadSuccess{}, &LoadError{Path: expanded, Err: err}
	}

	if cur, ok := d.state.ModelPath(); ok && cur == canon {
		d.metrics.load("cached", true)
		d.pub.Publish(Event{Name: EventLoadCached, Model: canon})
		return loadSuccess(canon, true), nil
	}

	d.pub.Publish(Event{Name: EventLoadStart, Model: canon})
	start := time.Now()
	m, tok, err := d.prov.Load(ctx, canon)
	if err == nil && (m == nil || tok == nil) {
		if m != nil {
			_ = m.Close()
		}
		err = errors.New("provider returned an incomplete model/tokenizer pair")
	}
	if err != nil {
		return types.LoadSuccess{}, &LoadError{Path: canon, Err: err}
	}

	// the old pair is dropped only after the new one is installed
	old, ok := d.state.install(m, tok, canon)
	if !ok {
		_ = m.Close()
		return types.LoadSuccess{}, &LoadError{Path: canon, Err: errDaemonClosed}
	}
	if old != nil {
		if cerr := old.Close(); cerr != nil {
			d.log.Warn().Err(cerr).Msg("closing replaced model")
		}
	}
	d.metrics.load("loaded", true)
	d.pub.Publish(Event{Name: EventLoadDone, Model: canon, Fields: map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
	}})
	return loadSuccess(canon, false), nil
}

// handleLoad runs Load and renders its outcome as one response.
func (d *Daemon) handleLoad(ctx context.Context, path string) types.Response {
	res, err := d.Load(ctx, path)
	if err == nil {
		return res
	}
	kind := types.ResponseLoadError
	result := "load_error"
	if IsPathError(err) {
		kind = types.ResponsePathError
		result = "path_error"
	}
	d.metrics.load(result, d.state.Loaded())
	d.pub.Publish(Event{Name: EventLoadFailed, Model: path, Fields: map[string]any{"error": err.Error(), "kind": kind}})
	return types.LoadFailure{Success: false, Error: err.Error(), Type: kind}
}

func loadSuccess(path string, cached bool) types.LoadSuccess {
	msg := types.MessageModelLoaded
	if cached {
		msg = types.MessageModelCached
	}
	return types.LoadSuccess{
		Success: true,
		Path:    path,
		Name:    filepath.Base(path),
		Cached:  cached,
		Message: msg,
	}
}
