package generate

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/simplify-framework/graphql/normalize"
	"github.com/simplify-framework/graphql/regen"
)

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Manifest
		wantErr bool
	}{
		{
			name: "valid",
			input: `
artifacts:
  - template: model.go.tmpl
    path: models/{name}.go
    scope: model
  - template: function.go.tmpl
    path: functions/{pascal}.go
    scope: step
    class: customizable
  - template: schema.txt.tmpl
    path: "{project}.txt"
`,
			want: Manifest{
				{Template: "model.go.tmpl", Path: "models/{name}.go", Scope: ScopeModel},
				{Template: "function.go.tmpl", Path: "functions/{pascal}.go", Scope: ScopeStep, Class: regen.Customizable},
				{Template: "schema.txt.tmpl", Path: "{project}.txt", Scope: ScopeProject},
			},
		},
		{
			name:    "unknown scope",
			input:   "artifacts:\n  - {template: a, path: \"a/{name}\", scope: table}\n",
			wantErr: true,
		},
		{
			name:    "unknown class",
			input:   "artifacts:\n  - {template: a, path: a, class: sticky}\n",
			wantErr: true,
		},
		{
			name:    "unknown key",
			input:   "artifacts:\n  - {template: a, path: a, output: b}\n",
			wantErr: true,
		},
		{
			name:    "scoped path without placeholder",
			input:   "artifacts:\n  - {template: a, path: models.go, scope: model}\n",
			wantErr: true,
		},
		{
			name:    "missing template",
			input:   "artifacts:\n  - {path: a}\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LoadManifest(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadManifest() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadManifest() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("LoadManifest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultManifest_Valid(t *testing.T) {
	t.Parallel()

	if err := DefaultManifest().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	project := normalize.NewNames("bookStore")
	name := normalize.NewNames("addBookFunctionSet")
	got := expandPath("{project}/{name}/{kebab}/{pascal}.go", project, name)
	if want := "book-store/add_book_function_set/add-book-function-set/AddBookFunctionSet.go"; got != want {
		t.Fatalf("expandPath() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	report := NewReport([]regen.Result{
		{Path: "a.go", Action: regen.ActionCreate},
		{Path: "b.go", Action: regen.ActionReview, Hunks: 2, DiffPath: "b.go.diff"},
		{Path: "c.go", Action: regen.ActionUpdate, Recovered: errors.New("binary content")},
		{Path: "d.go", Action: regen.ActionIgnored},
		{Path: "e.go", Action: regen.ActionUnchanged},
		{Path: "f.go", Action: regen.ActionFailed, Err: errors.New("read-only file system")},
	})

	want := Summary{Created: 1, Updated: 1, Ignored: 1, Review: 1, Unchanged: 1, Recovered: 1, Failed: 1}
	if diff := cmp.Diff(want, report.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if !report.NeedsReview() {
		t.Error("NeedsReview() = false")
	}

	var buf bytes.Buffer
	report.Write(&buf)
	wantText := `create           a.go
requires review  b.go (2 hunks) diff: b.go.diff
update           c.go
  recovered: binary content
ignored          d.go
unchanged        e.go
failed           f.go
  error: read-only file system

1 created, 1 updated, 1 unchanged, 1 ignored, 1 requires review, 1 failed
`
	if diff := cmp.Diff(wantText, buf.String()); diff != "" {
		t.Errorf("Write() mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := report.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	for _, want := range []string{`"requires_review": 1`, `"recovered": "binary content"`, `"diff_path": "b.go.diff"`, `"error": "read-only file system"`, `"failed": 1`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("WriteJSON() missing %s:\n%s", want, buf.String())
		}
	}
}
