//go:build !llama

package provider

// New fails without the 'llama' build tag: this binary has no inference
// runtime, and the daemon must not pretend otherwise.
func New(cfg Config) (Provider, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
