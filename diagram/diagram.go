// Package diagram renders resolver chains as Mermaid state diagrams.
package diagram

import (
	"fmt"
	"io"
	"strings"

	"github.com/simplify-framework/graphql/chain"
)

const terminal = "[*]"

// RenderChain writes a Mermaid `stateDiagram-v2` definition of a chain.
// The first step is the initial state and transitions to chain.Done end
// the diagram.
//
// Example:
//
//	var buf bytes.Buffer
//	if err := diagram.RenderChain("addBook", steps, &buf); err != nil {
//		log.Fatal(err)
//	}
func RenderChain(name string, steps []chain.Step, w io.Writer) error {
	if len(steps) == 0 {
		return fmt.Errorf("chain %s: %w", name, chain.ErrEmptyChain)
	}

	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	writeLine(&sb, "%%%% %s", name)
	writeLine(&sb, "%s --> %s", terminal, stateID(steps[0].Run))

	for _, s := range steps {
		id := stateID(s.Run)
		if id != s.Run {
			writeLine(&sb, "state %q as %s", s.Run, id)
		}
		if s.RetryCount > 0 {
			writeLine(&sb, "%s --> %s: retry x%d", id, id, s.RetryCount)
		}
		if s.OnSuccess == s.OnFailure {
			writeLine(&sb, "%s --> %s", id, target(s.OnSuccess))
		} else {
			writeLine(&sb, "%s --> %s: success", id, target(s.OnSuccess))
			writeLine(&sb, "%s --> %s: failure", id, target(s.OnFailure))
		}
		if s.Remote {
			writeLine(&sb, "note right of %s: remote", id)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func target(run string) string {
	if run == chain.Done {
		return terminal
	}
	return stateID(run)
}

// stateID keeps letters, digits and underscores, which Mermaid accepts as
// state identifiers.
func stateID(run string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, run)
}

func writeLine(sb *strings.Builder, format string, args ...any) {
	sb.WriteString("    ")
	fmt.Fprintf(sb, format, args...)
	sb.WriteString("\n")
}
