// Package ir holds the intermediate representation built by the schema
// compiler: the type table, servers with their endpoints and resolver
// chains, data sources and events.
package ir

import (
	"github.com/simplify-framework/graphql/internal/ordered"
)

type Kind string

const (
	KindObject Kind = "Object"
	KindInput  Kind = "Input"
	KindEnum   Kind = "Enum"
)

// Built-in scalars understood by the sample synthesizer.
const (
	ScalarString   = "String"
	ScalarID       = "ID"
	ScalarBoolean  = "Boolean"
	ScalarInt      = "Int"
	ScalarFloat    = "Float"
	ScalarDateTime = "DateTime"
)

// IsBuiltinScalar reports whether name is one of the built-in scalars.
func IsBuiltinScalar(name string) bool {
	switch name {
	case ScalarString, ScalarID, ScalarBoolean, ScalarInt, ScalarFloat, ScalarDateTime:
		return true
	}
	return false
}

type RefKind int

const (
	RefScalar RefKind = iota
	RefNamed
	RefList
)

// TypeRef is a field type: a scalar, a list of TypeRef, or a reference to
// a TypeDefinition by name.
type TypeRef struct {
	Kind    RefKind
	Name    string
	Elem    *TypeRef
	NonNull bool
}

// Named returns the innermost scalar or type name.
func (r *TypeRef) Named() string {
	for r != nil && r.Kind == RefList {
		r = r.Elem
	}
	if r == nil {
		return ""
	}
	return r.Name
}

// IsList reports whether r is a list type.
func (r *TypeRef) IsList() bool {
	return r != nil && r.Kind == RefList
}

// String renders r in GraphQL notation, e.g. "[Book!]!".
func (r *TypeRef) String() string {
	if r == nil {
		return ""
	}
	s := r.Name
	if r.Kind == RefList {
		s = "[" + r.Elem.String() + "]"
	}
	if r.NonNull {
		s += "!"
	}
	return s
}

// FieldDefinition is one field of an object or input type.
type FieldDefinition struct {
	Name          string   `json:"name"`
	Type          *TypeRef `json:"type"`
	Nullable      bool     `json:"nullable"`
	DefaultSample any      `json:"defaultSample,omitempty"`
}

// TypeDefinition is an object, input or enum declaration.
type TypeDefinition struct {
	Name   string             `json:"name"`
	Kind   Kind               `json:"kind"`
	Fields []*FieldDefinition `json:"fields,omitempty"`
	Values []string           `json:"values,omitempty"`
	// UserType is false for the root operation types and for the helper
	// types that only exist to describe directive arguments.
	UserType bool `json:"userType"`
}

// Field returns the field with the given name.
func (t *TypeDefinition) Field(name string) (*FieldDefinition, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// TypeTable holds every declared type by name, partitioned by kind.
type TypeTable struct {
	Objects *ordered.Map[string, *TypeDefinition] `json:"objects"`
	Inputs  *ordered.Map[string, *TypeDefinition] `json:"inputs"`
	Enums   *ordered.Map[string, *TypeDefinition] `json:"enums"`
	Scalars []string                              `json:"scalars,omitempty"`
}

func NewTypeTable() *TypeTable {
	return &TypeTable{
		Objects: ordered.NewMap[string, *TypeDefinition](),
		Inputs:  ordered.NewMap[string, *TypeDefinition](),
		Enums:   ordered.NewMap[string, *TypeDefinition](),
	}
}

// Partition returns the map holding types of the given kind.
func (t *TypeTable) Partition(kind Kind) *ordered.Map[string, *TypeDefinition] {
	switch kind {
	case KindInput:
		return t.Inputs
	case KindEnum:
		return t.Enums
	default:
		return t.Objects
	}
}

// Lookup finds a type by name across all partitions.
func (t *TypeTable) Lookup(name string) (*TypeDefinition, bool) {
	for _, p := range []*ordered.Map[string, *TypeDefinition]{t.Objects, t.Inputs, t.Enums} {
		if def, ok := p.Get(name); ok {
			return def, true
		}
	}
	return nil, false
}

// IsScalar reports whether name is a built-in or declared scalar.
func (t *TypeTable) IsScalar(name string) bool {
	if IsBuiltinScalar(name) {
		return true
	}
	for _, s := range t.Scalars {
		if s == name {
			return true
		}
	}
	return false
}
