// Package parser turns GraphQL SDL text into the declaration tree consumed
// by the compiler. Parsing itself is delegated to gqlparser; no semantic
// validation happens here, so custom directives need no declarations.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	gqlparser "github.com/vektah/gqlparser/v2/parser"

	"github.com/simplify-framework/graphql/decl"
)

// ParseFile reads and parses a schema file.
func ParseFile(path string) ([]decl.Declaration, error) {
	// #nosec G304 -- the schema path is supplied by the user on purpose
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	return Parse(filepath.Base(path), string(b))
}

// Parse parses SDL text. Type extensions are returned alongside plain
// definitions, in source order.
func Parse(name, input string) ([]decl.Declaration, error) {
	doc, err := gqlparser.ParseSchema(&ast.Source{Name: name, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", name, err)
	}

	defs := make([]*ast.Definition, 0, len(doc.Definitions)+len(doc.Extensions))
	defs = append(defs, doc.Definitions...)
	defs = append(defs, doc.Extensions...)
	sort.SliceStable(defs, func(i, j int) bool {
		return before(defs[i].Position, defs[j].Position)
	})

	decls := make([]decl.Declaration, 0, len(defs))
	for _, def := range defs {
		decls = append(decls, convertDefinition(def))
	}
	return decls, nil
}

func before(a, b *ast.Position) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

func convertDefinition(def *ast.Definition) decl.Declaration {
	d := decl.Declaration{
		Kind:       convertKind(def.Kind),
		Name:       def.Name,
		Directives: convertDirectives(def.Directives),
		Position:   convertPosition(def.Position),
	}
	for _, f := range def.Fields {
		d.Fields = append(d.Fields, convertField(f))
	}
	for _, v := range def.EnumValues {
		d.EnumValues = append(d.EnumValues, v.Name)
	}
	return d
}

func convertKind(kind ast.DefinitionKind) decl.Kind {
	switch kind {
	case ast.Object:
		return decl.KindObject
	case ast.InputObject:
		return decl.KindInput
	case ast.Enum:
		return decl.KindEnum
	case ast.Scalar:
		return decl.KindScalar
	case ast.Union:
		return decl.KindUnion
	case ast.Interface:
		return decl.KindInterface
	default:
		return decl.KindOther
	}
}

func convertField(f *ast.FieldDefinition) decl.Field {
	field := decl.Field{
		Name:       f.Name,
		Type:       convertType(f.Type),
		Directives: convertDirectives(f.Directives),
		Position:   convertPosition(f.Position),
	}
	for _, a := range f.Arguments {
		field.Arguments = append(field.Arguments, decl.Argument{
			Name: a.Name,
			Type: convertType(a.Type),
		})
	}
	return field
}

func convertType(t *ast.Type) *decl.Type {
	if t == nil {
		return nil
	}
	return &decl.Type{
		Name:    t.NamedType,
		Elem:    convertType(t.Elem),
		NonNull: t.NonNull,
	}
}

func convertDirectives(list ast.DirectiveList) []decl.Directive {
	if len(list) == 0 {
		return nil
	}
	out := make([]decl.Directive, 0, len(list))
	for _, d := range list {
		directive := decl.Directive{
			Name:     d.Name,
			Position: convertPosition(d.Position),
		}
		for _, a := range d.Arguments {
			directive.Arguments = append(directive.Arguments, decl.DirectiveArgument{
				Name:  a.Name,
				Value: convertValue(a.Value),
			})
		}
		out = append(out, directive)
	}
	return out
}

func convertValue(v *ast.Value) decl.Value {
	if v == nil {
		return decl.Value{Kind: decl.ValueNull}
	}

	switch v.Kind {
	case ast.StringValue, ast.BlockValue:
		return decl.Value{Kind: decl.ValueString, Raw: v.Raw}
	case ast.IntValue:
		return decl.Value{Kind: decl.ValueInt, Raw: v.Raw}
	case ast.FloatValue:
		return decl.Value{Kind: decl.ValueFloat, Raw: v.Raw}
	case ast.BooleanValue:
		return decl.Value{Kind: decl.ValueBoolean, Raw: v.Raw}
	case ast.EnumValue:
		return decl.Value{Kind: decl.ValueEnum, Raw: v.Raw}
	case ast.Variable:
		return decl.Value{Kind: decl.ValueVariable, Raw: v.Raw}
	case ast.ListValue:
		list := make([]decl.Value, 0, len(v.Children))
		for _, c := range v.Children {
			list = append(list, convertValue(c.Value))
		}
		return decl.Value{Kind: decl.ValueList, List: list}
	case ast.ObjectValue:
		fields := make([]decl.ObjectField, 0, len(v.Children))
		for _, c := range v.Children {
			fields = append(fields, decl.ObjectField{Name: c.Name, Value: convertValue(c.Value)})
		}
		return decl.Value{Kind: decl.ValueObject, Fields: fields}
	default:
		return decl.Value{Kind: decl.ValueNull}
	}
}

func convertPosition(p *ast.Position) decl.Position {
	if p == nil {
		return decl.Position{}
	}
	pos := decl.Position{Line: p.Line, Column: p.Column}
	if p.Src != nil {
		pos.Source = p.Src.Name
	}
	return pos
}
