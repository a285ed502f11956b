package generate

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/simplify-framework/graphql/regen"
)

// Summary counts files per action.
type Summary struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Ignored   int `json:"ignored"`
	Review    int `json:"requires_review"`
	Unchanged int `json:"unchanged"`
	Recovered int `json:"recovered"`
	Failed    int `json:"failed"`
}

// Report lists the result of every file of a run.
type Report struct {
	Results []regen.Result
	Summary Summary
}

type resultJSON struct {
	Path      string `json:"path"`
	Action    string `json:"action"`
	Hunks     int    `json:"hunks,omitempty"`
	DiffPath  string `json:"diff_path,omitempty"`
	Recovered string `json:"recovered,omitempty"`
	Error     string `json:"error,omitempty"`
}

func NewReport(results []regen.Result) *Report {
	r := &Report{Results: results}
	for _, res := range results {
		switch res.Action {
		case regen.ActionCreate:
			r.Summary.Created++
		case regen.ActionUpdate:
			r.Summary.Updated++
		case regen.ActionIgnored:
			r.Summary.Ignored++
		case regen.ActionReview:
			r.Summary.Review++
		case regen.ActionUnchanged:
			r.Summary.Unchanged++
		case regen.ActionFailed:
			r.Summary.Failed++
		}
		if res.Recovered != nil {
			r.Summary.Recovered++
		}
	}
	return r
}

// NeedsReview reports whether any file holds conflict markers.
func (r *Report) NeedsReview() bool {
	return r.Summary.Review > 0
}

// Write prints one line per file followed by the totals.
func (r *Report) Write(w io.Writer) {
	for _, res := range r.Results {
		_, _ = fmt.Fprintf(w, "%-16s %s", res.Action, res.Path)
		if res.Hunks > 0 {
			_, _ = fmt.Fprintf(w, " (%d hunks)", res.Hunks)
		}
		if res.DiffPath != "" {
			_, _ = fmt.Fprintf(w, " diff: %s", res.DiffPath)
		}
		_, _ = fmt.Fprintln(w)
		if res.Recovered != nil {
			_, _ = fmt.Fprintf(w, "  recovered: %v\n", res.Recovered)
		}
		if res.Err != nil {
			_, _ = fmt.Fprintf(w, "  error: %v\n", res.Err)
		}
	}

	s := r.Summary
	_, _ = fmt.Fprintf(w, "\n%d created, %d updated, %d unchanged, %d ignored, %d requires review",
		s.Created, s.Updated, s.Unchanged, s.Ignored, s.Review)
	if s.Failed > 0 {
		_, _ = fmt.Fprintf(w, ", %d failed", s.Failed)
	}
	_, _ = fmt.Fprintln(w)
}

// WriteJSON prints the report as a single JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	files := make([]resultJSON, 0, len(r.Results))
	for _, res := range r.Results {
		rj := resultJSON{
			Path:     res.Path,
			Action:   string(res.Action),
			Hunks:    res.Hunks,
			DiffPath: res.DiffPath,
		}
		if res.Recovered != nil {
			rj.Recovered = res.Recovered.Error()
		}
		if res.Err != nil {
			rj.Error = res.Err.Error()
		}
		files = append(files, rj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Files   []resultJSON `json:"files"`
		Summary Summary      `json:"summary"`
	}{files, r.Summary})
}
