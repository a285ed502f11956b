package compiler

import (
	"github.com/simplify-framework/graphql/decl"
)

// compileContext is the positional state of the walk. Handlers receive it
// by value and return the updated copy.
type compileContext struct {
	declaration string
	position    decl.Position
	server      string
	dataSource  string
	field       string
	directive   string
}

func (cc compileContext) enter(d decl.Declaration) compileContext {
	cc.declaration = d.Name
	cc.position = d.Position
	cc.field = ""
	cc.directive = ""
	return cc
}

func (cc compileContext) inField(f decl.Field) compileContext {
	cc.field = f.Name
	cc.position = f.Position
	return cc
}

func (cc compileContext) at(d decl.Directive) compileContext {
	cc.directive = d.Name
	if d.Position.Line > 0 {
		cc.position = d.Position
	}
	return cc
}

func (cc compileContext) withServer(name string) compileContext {
	cc.server = name
	return cc
}

func (cc compileContext) withDataSource(name string) compileContext {
	cc.dataSource = name
	return cc
}

// errorf builds a CompilationError at the current location wrapping
// sentinel.
func (cc compileContext) errorf(sentinel error, format string, args ...any) error {
	return &CompilationError{
		Declaration: cc.declaration,
		Field:       cc.field,
		Directive:   cc.directive,
		Position:    cc.position,
		Err:         wrapf(sentinel, format, args...),
	}
}
