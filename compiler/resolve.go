package compiler

import (
	"strings"

	"github.com/simplify-framework/graphql/ir"
)

// resolveReferences checks that every field type, operation schema and
// event source names something declared in the document.
func (c *compiler) resolveReferences() error {
	types := c.model.Types

	for _, part := range []ir.Kind{ir.KindObject, ir.KindInput} {
		for _, def := range types.Partition(part).Values() {
			for _, f := range def.Fields {
				if name, ok := c.resolves(f.Type); !ok {
					return &CompilationError{
						Declaration: def.Name,
						Field:       f.Name,
						Position:    c.positions[def.Name],
						Err:         c.unresolved(name, "type %q is not declared", name),
					}
				}
			}
		}
	}

	var err error
	c.model.EachOperation(func(s *ir.Server, p *ir.EndpointPath, op *ir.ResolverOperation) {
		if err != nil {
			return
		}
		at := &CompilationError{Declaration: op.Root, Field: op.OperationID, Position: c.positions[op.Root]}
		if name, ok := c.resolves(op.ResultType); !ok {
			at.Err = c.unresolved(name, "result type %q of server %q is not declared", name, s.Name)
			err = at
			return
		}
		if types.IsScalar(op.DataSchema) {
			op.DataSchema = ""
		}
		for _, param := range op.Parameters {
			if name, ok := c.resolves(param.Type); !ok {
				at.Err = c.unresolved(name, "parameter %q has undeclared type %q", param.Name, name)
				err = at
				return
			}
		}
	})
	if err != nil {
		return err
	}

	for _, ev := range c.model.Events.Values() {
		if ev.Source == "" {
			continue
		}
		if !c.model.DataSources.Has(ev.Source) {
			return &CompilationError{
				Declaration: ev.Schema,
				Directive:   string(ir.DirectiveEvent),
				Position:    c.positions[ev.Schema],
				Err:         wrapf(ErrUnresolvedReference, "event %q listens to undeclared data source %q", ev.Name, ev.Source),
			}
		}
	}
	return nil
}

// resolves reports whether the named type of ref is declared, returning
// the name checked.
func (c *compiler) resolves(ref *ir.TypeRef) (string, bool) {
	name := ref.Named()
	if c.model.Types.IsScalar(name) {
		return name, true
	}
	_, ok := c.model.Types.Lookup(name)
	return name, ok
}

// unresolved explains why name cannot be referenced. Unions and interfaces
// are declared but have no model to generate, so they get their own error.
func (c *compiler) unresolved(name, format string, args ...any) error {
	if kind, ok := c.abstract[name]; ok {
		return wrapf(ErrUnsupportedType, "%s %s declared at %s cannot be referenced by a field, result or parameter",
			strings.ToLower(string(kind)), name, c.positions[name])
	}
	return wrapf(ErrUnresolvedReference, format, args...)
}
