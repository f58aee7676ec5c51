package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aidaemon/internal/common/fsutil"
)

// Model is a loadable model file found on disk.
type Model struct {
	// Name is the file name, e.g. "llama-3.1-8b-q4_k_m.gguf".
	Name string
	// Path is the absolute file path.
	Path string
}

// LoadDir scans a directory for *.gguf files. Results are sorted by name.
func LoadDir(dir string) ([]Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		models = append(models, Model{Name: name, Path: filepath.Join(abs, name)})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

// Resolve maps a model path to the file the runtime should open.
// A regular file resolves to itself. A directory must hold exactly one *.gguf file.
func Resolve(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}
	models, err := LoadDir(path)
	if err != nil {
		return "", err
	}
	switch len(models) {
	case 0:
		return "", fmt.Errorf("no .gguf model file in %s", path)
	case 1:
		return models[0].Path, nil
	default:
		names := make([]string, len(models))
		for i, m := range models {
			names[i] = m.Name
		}
		return "", fmt.Errorf("ambiguous model directory %s: %s", path, strings.Join(names, ", "))
	}
}
