package regen

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileWriter writes files under root by renaming a temporary sibling into
// place, so readers never observe a partial file.
type fileWriter struct {
	root  string
	locks sync.Map // path -> *sync.Mutex
}

func newFileWriter(root string) *fileWriter {
	return &fileWriter{root: root}
}

// lock serializes the read-modify-write sequence of one path.
func (w *fileWriter) lock(path string) func() {
	v, _ := w.locks.LoadOrStore(path, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (w *fileWriter) abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func (w *fileWriter) write(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (w *fileWriter) remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
