package regen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readFixture(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestEngine_DecisionTable(t *testing.T) {
	t.Parallel()

	const (
		old      = "old\n"
		fresh    = "new\n"
		conflict = "<<<<<<< mine\nold\n=======\nnew\n>>>>>>> auto\n"
	)

	tests := []struct {
		name        string
		exists      bool
		class       Classification
		policy      Policy
		wantAction  Action
		wantContent string
	}{
		{"absent regenerable", false, Regenerable, Policy{}, ActionCreate, fresh},
		{"absent customizable merge", false, Customizable, Policy{Merge: true}, ActionCreate, fresh},
		{"regenerable", true, Regenerable, Policy{}, ActionUpdate, fresh},
		{"regenerable override", true, Regenerable, Policy{Override: true}, ActionUpdate, fresh},
		{"customizable", true, Customizable, Policy{}, ActionIgnored, old},
		{"customizable merge without override", true, Customizable, Policy{Merge: true}, ActionIgnored, old},
		{"customizable override", true, Customizable, Policy{Override: true}, ActionUpdate, fresh},
		{"regenerable merge", true, Regenerable, Policy{Merge: true}, ActionReview, conflict},
		{"customizable override merge", true, Customizable, Policy{Override: true, Merge: true}, ActionReview, conflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			if tt.exists {
				writeFixture(t, root, "pkg/file.go", old)
			}

			res, err := New(root, tt.policy).Apply(context.Background(), File{
				Path:    "pkg/file.go",
				Content: []byte(fresh),
				Class:   tt.class,
			})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if res.Action != tt.wantAction {
				t.Errorf("Apply() action = %q, want %q", res.Action, tt.wantAction)
			}
			if diff := cmp.Diff(tt.wantContent, readFixture(t, root, "pkg/file.go")); diff != "" {
				t.Errorf("file content mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngine_MergeExample(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFixture(t, root, "a.txt", "line1\nline2\n")

	res, err := New(root, Policy{Merge: true, Diff: true}).Apply(context.Background(), File{
		Path:    "a.txt",
		Content: []byte("line1\nline3\n"),
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := Result{Path: "a.txt", Action: ActionReview, Hunks: 1, DiffPath: "a.txt.diff"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("Apply() mismatch (-want +got):\n%s", diff)
	}

	got := readFixture(t, root, "a.txt")
	if !strings.HasPrefix(got, "line1\n") {
		t.Errorf("unchanged line not kept first: %q", got)
	}
	if !strings.Contains(got, MarkerMine+"\nline2\n"+MarkerSep+"\nline3\n"+MarkerAuto+"\n") {
		t.Errorf("conflict block missing: %q", got)
	}

	sidecar := readFixture(t, root, "a.txt.diff")
	if !strings.Contains(sidecar, "-line2") || !strings.Contains(sidecar, "+line3") {
		t.Errorf("sidecar = %q", sidecar)
	}
}

func TestEngine_IgnoreExample(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFixture(t, root, "functions/step.go", "hand written\n")

	res, err := New(root, Policy{}).Apply(context.Background(), File{
		Path:    "functions/step.go",
		Content: []byte("generated\n"),
		Class:   Customizable,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Action != ActionIgnored {
		t.Fatalf("Apply() action = %q, want %q", res.Action, ActionIgnored)
	}
	if got := readFixture(t, root, "functions/step.go"); got != "hand written\n" {
		t.Fatalf("customizable file changed: %q", got)
	}
}

func TestEngine_BinaryFallback(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFixture(t, root, "blob.bin", "a\x00b")

	res, err := New(root, Policy{Merge: true}).Apply(context.Background(), File{
		Path:    "blob.bin",
		Content: []byte("text\n"),
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Action != ActionUpdate || !errors.Is(res.Recovered, ErrBinary) {
		t.Fatalf("Apply() = %+v, want an update recovered from ErrBinary", res)
	}
	if got := readFixture(t, root, "blob.bin"); got != "text\n" {
		t.Fatalf("file = %q, want overwrite", got)
	}
}

func TestEngine_ReadFailureFallback(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// A directory cannot be read, nor replaced by a file.
	if err := os.MkdirAll(filepath.Join(root, "dir.go"), 0o750); err != nil {
		t.Fatal(err)
	}

	res, err := New(root, Policy{Merge: true}).Apply(context.Background(), File{
		Path:    "dir.go",
		Content: []byte("x\n"),
	})
	if res.Recovered == nil {
		t.Errorf("Apply() recovered = nil, want the read error")
	}
	if err == nil {
		t.Errorf("Apply() error = nil, want the write failure")
	}
	if res.Action != ActionFailed || res.Err == nil {
		t.Errorf("Apply() = %+v, want a failed result carrying the error", res)
	}
}

func TestEngine_ApplyAllContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a.go"), 0o750); err != nil {
		t.Fatal(err)
	}

	results, err := New(root, Policy{Merge: true}).ApplyAll(context.Background(), []File{
		{Path: "a.go", Content: []byte("package a\n")},
		{Path: "../b.go", Content: []byte("package b\n")},
		{Path: "c.go", Content: []byte("package c\n")},
	})
	if err == nil {
		t.Fatal("ApplyAll() error = nil, want the joined failures")
	}

	got := make([]Action, 0, len(results))
	for _, res := range results {
		got = append(got, res.Action)
	}
	if diff := cmp.Diff([]Action{ActionFailed, ActionFailed, ActionCreate}, got); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
	for _, res := range results[:2] {
		if res.Err == nil || !errors.Is(err, res.Err) {
			t.Errorf("result %s error = %v, want it joined into %v", res.Path, res.Err, err)
		}
	}
	if got := readFixture(t, root, "c.go"); got != "package c\n" {
		t.Errorf("c.go = %q, want it written after the failures", got)
	}
}

func TestEngine_UnchangedClearsSidecar(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFixture(t, root, "a.txt", "same\n")
	writeFixture(t, root, "a.txt.diff", "stale\n")

	res, err := New(root, Policy{Merge: true, Diff: true}).Apply(context.Background(), File{
		Path:    "a.txt",
		Content: []byte("same\n"),
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Action != ActionUnchanged || res.Hunks != 0 {
		t.Fatalf("Apply() = %+v, want unchanged", res)
	}
	if _, err := os.Stat(filepath.Join(root, "a.txt.diff")); !os.IsNotExist(err) {
		t.Fatalf("stale sidecar kept: %v", err)
	}
}

func TestEngine_UnresolvedConflictsKept(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	conflicted := "a\n" + MarkerMine + "\nb\n" + MarkerSep + "\nc\n" + MarkerAuto + "\n"
	writeFixture(t, root, "a.txt", conflicted)

	res, err := New(root, Policy{Merge: true}).Apply(context.Background(), File{
		Path:    "a.txt",
		Content: []byte("a\nd\n"),
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Action != ActionReview || res.Hunks != 1 {
		t.Fatalf("Apply() = %+v, want review with one hunk", res)
	}
	if got := readFixture(t, root, "a.txt"); got != conflicted {
		t.Fatalf("conflicted file rewritten: %q", got)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := []File{
		{Path: "a.go", Content: []byte("package a\n")},
		{Path: "b/b.go", Content: []byte("package b\n"), Class: Customizable},
	}
	e := New(root, Policy{})

	first, err := e.ApplyAll(context.Background(), files)
	if err != nil {
		t.Fatalf("ApplyAll() error = %v", err)
	}
	second, err := e.ApplyAll(context.Background(), files)
	if err != nil {
		t.Fatalf("ApplyAll() error = %v", err)
	}

	actions := func(rs []Result) []Action {
		var out []Action
		for _, r := range rs {
			out = append(out, r.Action)
		}
		return out
	}
	if diff := cmp.Diff([]Action{ActionCreate, ActionCreate}, actions(first)); diff != "" {
		t.Errorf("first run mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Action{ActionUnchanged, ActionIgnored}, actions(second)); diff != "" {
		t.Errorf("second run mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ApplyAllCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(t.TempDir(), Policy{}).ApplyAll(ctx, []File{{Path: "a", Content: []byte("a")}})
	if !errors.Is(err, context.Canceled) || len(res) != 0 {
		t.Fatalf("ApplyAll() = %v, %v, want context.Canceled", res, err)
	}
}

func TestEngine_InvalidPath(t *testing.T) {
	t.Parallel()

	e := New(t.TempDir(), Policy{})
	for _, p := range []string{"", "/abs", "../escape", "a/../b"} {
		if _, err := e.Apply(context.Background(), File{Path: p}); err == nil {
			t.Errorf("Apply(%q) succeeded, want error", p)
		}
	}
}

func TestEngine_ConcurrentSamePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	e := New(root, Policy{})

	var g errgroup.Group
	contents := make(map[string]bool)
	for i := 0; i < 16; i++ {
		content := fmt.Sprintf("writer %d\n", i)
		contents[content] = true
		g.Go(func() error {
			_, err := e.Apply(context.Background(), File{Path: "shared.txt", Content: []byte(content)})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if got := readFixture(t, root, "shared.txt"); !contents[got] {
		t.Fatalf("shared.txt = %q, want one writer's content", got)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestParseClassification(t *testing.T) {
	t.Parallel()

	for _, c := range []Classification{Regenerable, Customizable} {
		got, err := ParseClassification(c.String())
		if err != nil || got != c {
			t.Errorf("ParseClassification(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseClassification("weird"); err == nil {
		t.Error("ParseClassification(weird) succeeded")
	}
}
