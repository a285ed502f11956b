package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simplify-framework/graphql/decl"
)

var (
	ErrDuplicateName       = errors.New("duplicate name")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrDirectiveOrder      = errors.New("directive out of order")
	ErrUnknownDirective    = errors.New("unknown directive")
	ErrMisplacedDirective  = errors.New("misplaced directive")
	ErrMissingArgument     = errors.New("missing directive argument")
	ErrInvalidArgument     = errors.New("invalid directive argument")
	ErrInvalidChain        = errors.New("invalid resolver chain")
	ErrCycle               = errors.New("reference cycle")
	ErrUnsupportedType     = errors.New("unsupported type")
)

// CompilationError locates a compile failure in the schema. Err wraps one
// of the sentinel errors above.
type CompilationError struct {
	Declaration string
	Field       string
	Directive   string
	Position    decl.Position
	Err         error
}

func (e *CompilationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Declaration)
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}
	if e.Directive != "" {
		b.WriteString(" @")
		b.WriteString(e.Directive)
	}
	if pos := e.Position.String(); pos != "" {
		b.WriteString(" (")
		b.WriteString(pos)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// IsCompilationError reports whether err carries a CompilationError.
func IsCompilationError(err error) bool {
	var ce *CompilationError
	return errors.As(err, &ce)
}

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
