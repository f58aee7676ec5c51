package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"off":     zerolog.Disabled,
		"error":   zerolog.ErrorLevel,
		"WARN":    zerolog.WarnLevel,
		"info":    zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		" trace ": zerolog.TraceLevel,
		"weird":   zerolog.InfoLevel, // default
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	l := New(&buf, "info", "json")
	l.Debug().Msg("hidden")
	l.Info().Str("k", "v").Msg("shown")
	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("not json: %q: %v", out, err)
	}
	if m["message"] != "shown" || m["k"] != "v" || m["component"] != "aidaemon" {
		t.Fatalf("unexpected fields: %v", m)
	}
}

func TestNew_EnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	var buf bytes.Buffer
	l := New(&buf, "error", "json")
	l.Debug().Msg("dbg")
	if !strings.Contains(buf.String(), "dbg") {
		t.Fatalf("env level not applied: %q", buf.String())
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	l := New(&buf, "info", "console")
	l.Info().Msg("hello")
	out := buf.String()
	if !strings.Contains(out, "hello") || strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected console output, got %q", out)
	}
}
