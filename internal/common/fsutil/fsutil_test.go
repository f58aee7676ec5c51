package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// setHome points os.UserHomeDir at a temp dir for the duration of the test.
func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	return home
}

func TestExpandHome(t *testing.T) {
	home := setHome(t)
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	exp, err := ExpandHome("~/models/llm")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if want := filepath.Join(home, "models", "llm"); exp != want {
		t.Fatalf("expected %q, got %q", want, exp)
	}
	// ~user is not expanded
	if got, _ := ExpandHome("~someone/x"); got != "~someone/x" {
		t.Fatalf("unexpected expansion: %q", got)
	}
}

func TestPathExists(t *testing.T) {
	d := t.TempDir()
	if !PathExists(d) {
		t.Fatalf("temp dir should exist")
	}
	if PathExists(filepath.Join(d, "missing")) {
		t.Fatalf("missing path reported as existing")
	}
}

func TestCanonical(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, "m")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	for _, in := range []string{"~/m", "~/m/", "~/m/../m", dir} {
		got, err := Canonical(in)
		if err != nil {
			t.Fatalf("Canonical(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
	if runtime.GOOS != "windows" {
		link := filepath.Join(home, "link")
		if err := os.Symlink(dir, link); err != nil {
			t.Fatalf("symlink: %v", err)
		}
		if got, _ := Canonical(link); got != want {
			t.Fatalf("symlink not resolved: %q", got)
		}
	}
}

func TestCanonical_MissingPathStaysAbsolute(t *testing.T) {
	d := t.TempDir()
	in := filepath.Join(d, "nope", "..", "gone")
	got, err := Canonical(in)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "gone" {
		t.Fatalf("unexpected canonical form: %q", got)
	}
}
