package normalize

import (
	"github.com/simplify-framework/graphql/ir"
)

// Info describes the generated project.
type Info struct {
	Name string
	ID   string
	// Module is the Go module path of the generated backend.
	Module string
	// Runtime is the import path of the chain engine used by generated
	// resolvers.
	Runtime string
}

// Project is the render context for a whole generation run.
type Project struct {
	Name    Names
	ID      string
	Module  string
	Runtime string

	Servers     List[*Server]
	DataSources List[*DataSource]
	Events      List[*Event]
	Objects     List[*Type]
	Inputs      List[*Type]
	Enums       List[*Type]
	// Models holds the user types of every kind, in declaration order
	// per kind: objects, inputs, enums.
	Models    List[*Type]
	Resolvers List[*Resolver]
	Functions List[*Function]
	Steps     List[*Step]
}

// Type is an object, input or enum.
type Type struct {
	Name     Names
	Kind     ir.Kind
	IsObject bool
	IsInput  bool
	IsEnum   bool
	UserType bool
	Fields   List[*Field]
	Values   List[*EnumValue]
	// DataSources bound to this type.
	DataSources List[Names]
}

type Field struct {
	Name     Names
	Type     string
	GoType   string
	Nullable bool
	IsList   bool
	// Sample is a Go expression of GoType.
	Sample string
}

type EnumValue struct {
	Name  Names
	Value string
}

type Server struct {
	Name        Names
	Runtime     string
	Options     ir.ServerOptions
	Definitions List[*Definition]
	Paths       List[*Path]
	// Routes are the distinct URL paths across definitions.
	Routes    List[string]
	Resolvers List[*Resolver]
	// Functions are the remote steps this server's chains run.
	Functions List[Names]
}

type Definition struct {
	Root  Names
	Paths List[*Path]
}

type Path struct {
	Path       string
	Name       Names
	Root       Names
	Options    ir.EndpointOptions
	Operations List[*Operation]
}

type Operation struct {
	ID         Names
	Root       Names
	Path       string
	DataType   ir.DataType
	IsList     bool
	DataSchema Names
	ResultType string
	GoType     string
	Parameters List[*Parameter]
	Resolver   *Resolver
}

type Parameter struct {
	Name   Names
	Type   string
	GoType string
}

type Resolver struct {
	Name      Names
	Kind      ir.DirectiveKind
	IsSet     bool
	Implicit  bool
	Server    Names
	Operation Names
	Path      string
	Steps     List[*Step]
}

type Step struct {
	Run           Names
	OnSuccess     Names
	OnFailure     Names
	OnSuccessDone bool
	OnFailureDone bool
	RetryCount    int
	Remote        bool
}

// Function is a remote step and the servers whose chains run it.
type Function struct {
	Run     Names
	Servers List[Names]
}

type DataSource struct {
	Name       Names
	Kind       string
	Schema     Names
	Parameters List[*Setting]
	Events     List[Names]
}

// Setting is a directive argument rendered as text.
type Setting struct {
	Name  Names
	Value string
}

type Event struct {
	Name     Names
	Kind     string
	Function Names
	Source   Names
	Schema   Names
}
