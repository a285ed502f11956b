// Package regen writes generated files into a tree that may already hold
// an earlier generation, possibly edited by hand. For every file it picks
// exactly one action: create, overwrite, skip, or a line merge that
// brackets conflicting lines with markers for manual review.
package regen

import "fmt"

// Classification tells whether a file is owned by the generator.
type Classification int

const (
	// Regenerable files are always rewritten.
	Regenerable Classification = iota
	// Customizable files are written once and then left to the user
	// unless overridden.
	Customizable
)

func (c Classification) String() string {
	switch c {
	case Regenerable:
		return "regenerable"
	case Customizable:
		return "customizable"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// ParseClassification is the inverse of Classification.String.
func ParseClassification(s string) (Classification, error) {
	switch s {
	case "regenerable", "":
		return Regenerable, nil
	case "customizable":
		return Customizable, nil
	default:
		return 0, fmt.Errorf("unknown classification %q", s)
	}
}

// Policy holds the run-wide flags.
type Policy struct {
	// Override rewrites customizable files.
	Override bool
	// Merge line-merges existing files instead of overwriting them.
	Merge bool
	// Diff writes a unified diff next to every file that needs review.
	Diff bool
}

type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionIgnored   Action = "ignored"
	ActionReview    Action = "requires review"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// Result reports what happened to one file.
type Result struct {
	Path   string
	Action Action
	// Hunks counts the changed regions found by a merge.
	Hunks int
	// DiffPath is the sidecar written for review, if any.
	DiffPath string
	// Recovered holds the error that made the engine fall back to a
	// plain overwrite.
	Recovered error
	// Err holds the failure that left the file unwritten. Action is
	// ActionFailed whenever Err is set.
	Err error
}

// decide applies the decision table. Rows are checked in order and the
// first match wins, so an existing customizable file is skipped without
// override even when merging.
func decide(exists bool, class Classification, p Policy) Action {
	switch {
	case !exists:
		return ActionCreate
	case class == Customizable && !p.Override:
		return ActionIgnored
	case p.Merge:
		return ActionReview
	default:
		return ActionUpdate
	}
}
