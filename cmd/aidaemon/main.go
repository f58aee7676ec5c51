package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"aidaemon/internal/config"
	"aidaemon/internal/daemon"
	"aidaemon/internal/logging"
	"aidaemon/internal/protocol"
	"aidaemon/internal/provider"
	"aidaemon/pkg/types"
)

// errStartup marks a failure already reported on stdout.
var errStartup = errors.New("startup failed")

// newProvider is swapped in tests.
var newProvider = provider.New

// options mirrors the command-line flags.
type options struct {
	configPath   string
	logLevel     string
	logFormat    string
	llamaCtx     int
	llamaThreads int
	metricsFile  string
	model        string
}

func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errStartup) {
			fmt.Fprintln(os.Stderr, "aidaemon:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:   "aidaemon",
		Short: "Keep a language model resident and serve generation requests over stdin/stdout",
		Long: "aidaemon reads one JSON command per line on stdin (load_model, generate, status, shutdown)\n" +
			"and writes one JSON response per line on stdout. Logs go to stderr.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdin, stdout, stderr)
		},
	}
	f := root.Flags()
	f.StringVar(&opts.configPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: off|error|warn|info|debug (default info)")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format: console|json (default console)")
	f.IntVar(&opts.llamaCtx, "llama-ctx", 0, "Model context size in tokens (default 2048)")
	f.IntVar(&opts.llamaThreads, "llama-threads", 0, "Inference threads (default number of CPUs)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile on exit")
	f.StringVar(&opts.model, "model", "", "Model path to load before reporting ready")
	return root
}

// resolveConfig layers explicitly set flags over the config file, then applies defaults.
func resolveConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		c, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("llama-ctx") {
		cfg.LlamaCtx = opts.llamaCtx
	}
	if flags.Changed("llama-threads") {
		cfg.LlamaThreads = opts.llamaThreads
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if flags.Changed("model") {
		cfg.DefaultModel = opts.model
	}
	return cfg.WithDefaults(), nil
}

func run(ctx context.Context, cfg config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)

	prov, err := newProvider(provider.Config{ContextSize: cfg.LlamaCtx, Threads: cfg.LlamaThreads})
	if err != nil {
		// reported once on the protocol channel; the read loop never starts
		log.Error().Err(err).Msg("inference runtime unavailable")
		_ = protocol.NewEncoder(stdout).Encode(types.ImportError{Error: err.Error(), Type: types.ResponseImportError})
		return errStartup
	}

	metrics := daemon.NewMetrics()
	d := daemon.New(prov, stdout, daemon.Config{
		Logger:    &log,
		Publisher: daemon.LogPublisher{Logger: log},
		Metrics:   metrics,
	})
	finish := func() {
		if err := d.Close(); err != nil {
			log.Warn().Err(err).Msg("releasing model")
		}
		writeMetrics(log, metrics, cfg.MetricsFile)
	}

	// the signal path only writes the shutdown line and exits; releasing the
	// model and exporting metrics stay on this goroutine
	var exitMu sync.Mutex
	done := false
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go d.WatchSignals(sigs, func() {
		exitMu.Lock()
		defer exitMu.Unlock()
		if !done {
			os.Exit(0)
		}
	})

	if cfg.DefaultModel != "" {
		if res, err := d.Load(ctx, cfg.DefaultModel); err != nil {
			log.Warn().Err(err).Str("model", cfg.DefaultModel).Msg("preloading default model")
		} else {
			log.Info().Str("model", res.Path).Msg("default model loaded")
		}
	}

	err = d.Run(ctx, stdin)
	exitMu.Lock()
	done = true
	exitMu.Unlock()
	finish()
	return err
}

func writeMetrics(log zerolog.Logger, m *daemon.Metrics, path string) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("writing metrics textfile")
	}
}
