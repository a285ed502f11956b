package regen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/simplify-framework/graphql/internal/ctxlog"
)

// DiffSuffix is appended to a file path to name its review sidecar.
const DiffSuffix = ".diff"

// File is one rendered artifact.
type File struct {
	// Path is slash separated and relative to the engine root.
	Path    string
	Content []byte
	Class   Classification
}

// Engine applies a Policy to files under a root directory. Apply may be
// called concurrently; calls for the same path are serialized.
type Engine struct {
	policy Policy
	w      *fileWriter
}

func New(root string, policy Policy) *Engine {
	return &Engine{policy: policy, w: newFileWriter(root)}
}

// Root returns the directory files are written under.
func (e *Engine) Root() string {
	return e.w.root
}

// Apply decides and performs the action for f. Problems reading or
// diffing the existing file are recovered by overwriting it and are
// reported in Result.Recovered. A failure to write is returned and also
// recorded on the result as ActionFailed.
func (e *Engine) Apply(ctx context.Context, f File) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	if err := validPath(f.Path); err != nil {
		logger.Error("skipped file", "path", f.Path, "error", err)
		return Result{Path: f.Path, Action: ActionFailed, Err: err}, err
	}

	unlock := e.w.lock(f.Path)
	defer unlock()

	res, err := e.apply(f)
	switch {
	case err != nil:
		res.Action = ActionFailed
		res.Err = err
		logger.Error("failed to write file", "path", f.Path, "error", err)
	case res.Recovered != nil:
		logger.Warn("overwrote file after read failure", "path", f.Path, "error", res.Recovered)
	default:
		logger.Info("file", "path", f.Path, "action", string(res.Action), "hunks", res.Hunks)
	}
	return res, err
}

// ApplyAll applies files in order. A file that cannot be written does not
// stop the run; its failure is on its result and in the joined error.
// ApplyAll stops only when ctx is done.
func (e *Engine) ApplyAll(ctx context.Context, files []File) ([]Result, error) {
	results := make([]Result, 0, len(files))
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, errors.Join(append(errs, err)...)
		}
		res, err := e.Apply(ctx, f)
		if err != nil {
			errs = append(errs, err)
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (e *Engine) apply(f File) (Result, error) {
	res := Result{Path: f.Path}
	target := e.w.abs(f.Path)

	old, readErr := os.ReadFile(target)
	exists := !errors.Is(readErr, fs.ErrNotExist)
	res.Action = decide(exists, f.Class, e.policy)

	if readErr != nil && exists && res.Action != ActionIgnored {
		res.Action = ActionUpdate
		res.Recovered = fmt.Errorf("failed to read %s: %w", f.Path, readErr)
		return res, e.w.write(target, f.Content)
	}

	switch res.Action {
	case ActionIgnored:
		return res, nil
	case ActionCreate:
		return res, e.w.write(target, f.Content)
	}

	sidecar := target + DiffSuffix
	if bytes.Equal(old, f.Content) {
		res.Action = ActionUnchanged
		return res, e.clearSidecar(sidecar)
	}

	if res.Action == ActionUpdate {
		if err := e.w.write(target, f.Content); err != nil {
			return res, err
		}
		return res, e.clearSidecar(sidecar)
	}

	if n := unresolved(old); n > 0 {
		res.Hunks = n
		return res, nil
	}

	merged, hunks, err := Merge(old, f.Content)
	if err != nil {
		res.Action = ActionUpdate
		res.Recovered = err
		return res, e.w.write(target, f.Content)
	}
	res.Hunks = hunks
	if err := e.w.write(target, merged); err != nil {
		return res, err
	}

	if e.policy.Diff {
		diff, err := UnifiedDiff(f.Path, old, f.Content)
		if err != nil {
			res.Recovered = fmt.Errorf("failed to diff %s: %w", f.Path, err)
			return res, nil
		}
		if err := e.w.write(sidecar, []byte(diff)); err != nil {
			return res, err
		}
		res.DiffPath = f.Path + DiffSuffix
	}
	return res, nil
}

// clearSidecar drops a review diff left by an earlier run.
func (e *Engine) clearSidecar(sidecar string) error {
	if !e.policy.Diff {
		return nil
	}
	return e.w.remove(sidecar)
}

// unresolved counts conflict blocks a previous merge left in content.
// Such a file is kept as is until the user resolves it.
func unresolved(content []byte) int {
	n := 0
	for _, line := range splitLines(content) {
		if strings.TrimRight(line, "\r\n") == MarkerMine {
			n++
		}
	}
	return n
}

func validPath(p string) error {
	if p == "" || path.IsAbs(p) || !fs.ValidPath(p) {
		return fmt.Errorf("invalid output path %q", p)
	}
	return nil
}
