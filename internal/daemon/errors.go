package daemon

import "errors"

var errDaemonClosed = errors.New("daemon is shutting down")

// PathError reports a load_model path that does not exist.
type PathError struct{ Path string }

func (e *PathError) Error() string { return "Model path does not exist: " + e.Path }

// LoadError reports that the provider failed to materialize a model.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// GenerateError reports a provider failure before or during token streaming.
type GenerateError struct{ Err error }

func (e *GenerateError) Error() string { return e.Err.Error() }
func (e *GenerateError) Unwrap() error { return e.Err }

// UnknownCommandError reports an unrecognized command type tag.
type UnknownCommandError struct{ Type string }

func (e *UnknownCommandError) Error() string { return "Unknown command type: " + e.Type }

// IsPathError reports whether err is a *PathError.
func IsPathError(err error) bool {
	var e *PathError
	return errors.As(err, &e)
}

// IsLoadError reports whether err is a *LoadError.
func IsLoadError(err error) bool {
	var e *LoadError
	return errors.As(err, &e)
}
