package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"paperd/internal/common/fsutil"
	"paperd/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds a registry from filenames.
// ID is the full filename; Name is the filename without extension; Path is absolute.
func LoadDir(dir string) ([]types.Model, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("models dir is not configured")
	}
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
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".gguf") {
			continue
		}
		models = append(models, types.Model{
			ID:   name,
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(abs, name),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// NotFoundError reports that no registry entry matches a model name.
type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string { return "model not found: " + e.Name }

// Resolve picks the model for name: exact ID, then exact stem, then the first
// case-insensitive substring match (so "mistral-7b-instruct" finds
// "mistral-7b-instruct-v0.2.Q4_K_M.gguf"). A Hugging Face style "org/name"
// is matched on its last path element.
func Resolve(models []types.Model, name string) (types.Model, error) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return types.Model{}, &NotFoundError{Name: name}
	}
	for _, m := range models {
		if m.ID == name {
			return m, nil
		}
	}
	for _, m := range models {
		if m.Name == name {
			return m, nil
		}
	}
	lower := strings.ToLower(name)
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.ID), lower) {
			return m, nil
		}
	}
	return types.Model{}, &NotFoundError{Name: name}
}
