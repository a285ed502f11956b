// Package decl defines the declaration tree the compiler consumes. It is
// the contract with whatever parser turns schema text into structured
// nodes; package parser provides one backed by gqlparser.
package decl

import "fmt"

type Kind string

const (
	KindObject    Kind = "OBJECT"
	KindInput     Kind = "INPUT_OBJECT"
	KindEnum      Kind = "ENUM"
	KindScalar    Kind = "SCALAR"
	KindUnion     Kind = "UNION"
	KindInterface Kind = "INTERFACE"
	KindOther     Kind = "OTHER"
)

// Position locates a node in the source document.
type Position struct {
	Source string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Line == 0 {
		return p.Source
	}
	if p.Source == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Source, p.Line, p.Column)
}

// Declaration is a top-level type definition.
type Declaration struct {
	Kind       Kind
	Name       string
	Fields     []Field
	EnumValues []string
	Directives []Directive
	Position   Position
}

// Field is a field of an object or input type.
type Field struct {
	Name       string
	Type       *Type
	Arguments  []Argument
	Directives []Directive
	Position   Position
}

// Argument is a field argument.
type Argument struct {
	Name string
	Type *Type
}

// Type is a type expression: a named type or a list, optionally non-null.
type Type struct {
	Name    string
	Elem    *Type
	NonNull bool
}

// Named returns the innermost named type.
func (t *Type) Named() string {
	for t != nil && t.Elem != nil {
		t = t.Elem
	}
	if t == nil {
		return ""
	}
	return t.Name
}

// IsList reports whether t is a list type.
func (t *Type) IsList() bool {
	return t != nil && t.Elem != nil
}

func (t *Type) String() string {
	if t == nil {
		return ""
	}
	s := t.Name
	if t.Elem != nil {
		s = "[" + t.Elem.String() + "]"
	}
	if t.NonNull {
		s += "!"
	}
	return s
}

// Directive is an annotation on a declaration or field.
type Directive struct {
	Name      string
	Arguments []DirectiveArgument
	Position  Position
}

// Argument returns the value of the named argument.
func (d Directive) Argument(name string) (Value, bool) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// DirectiveArgument is a name/value pair of a directive.
type DirectiveArgument struct {
	Name  string
	Value Value
}

type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueInt
	ValueFloat
	ValueBoolean
	ValueEnum
	ValueList
	ValueObject
	ValueVariable
)

// Value is a literal from the value AST. Raw holds the literal text of
// scalars; List and Fields hold the children of lists and objects.
type Value struct {
	Kind   ValueKind
	Raw    string
	List   []Value
	Fields []ObjectField
}

// ObjectField is one entry of an object value.
type ObjectField struct {
	Name  string
	Value Value
}
