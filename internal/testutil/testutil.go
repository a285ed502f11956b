// Package testutil locates the shared schema fixtures under testdata/.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

// moduleRoot walks up from this source file to the directory holding go.mod.
var moduleRoot = sync.OnceValues(func() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("cannot locate testutil source")
	}
	for dir := filepath.Dir(file); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		if parent := filepath.Dir(dir); parent == dir {
			return "", errors.New("no go.mod above " + file)
		}
	}
})

// FixturePath returns the path of a file under testdata/. The file must
// exist.
func FixturePath(t *testing.T, name string) string {
	t.Helper()
	root, err := moduleRoot()
	if err != nil {
		t.Fatalf("failed to locate fixtures: %v", err)
	}
	path := filepath.Join(root, "testdata", filepath.FromSlash(name))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("missing fixture %s: %v", name, err)
	}
	return path
}

// ReadFixture returns the content of a file under testdata/.
func ReadFixture(t *testing.T, name string) string {
	t.Helper()
	path := FixturePath(t, name)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", path, err)
	}
	return string(b)
}
