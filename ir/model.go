package ir

import (
	"github.com/simplify-framework/graphql/chain"
	"github.com/simplify-framework/graphql/internal/ordered"
)

// DirectiveKind names a recognized directive.
type DirectiveKind string

const (
	DirectiveServer      DirectiveKind = "GraphQLServer"
	DirectiveDataSource  DirectiveKind = "GraphQLDataSource"
	DirectiveEvent       DirectiveKind = "GraphQLEvent"
	DirectiveEndpoint    DirectiveKind = "GraphQLEndpoint"
	DirectiveResolver    DirectiveKind = "GraphQLResolver"
	DirectiveResolverSet DirectiveKind = "GraphQLResolverSet"
)

// Legacy spellings of the resolver directives.
const (
	legacyFunction    = "GraphQLFunction"
	legacyFunctionSet = "GraphQLFunctionSet"
)

// LookupDirective maps a directive name to its kind.
func LookupDirective(name string) (DirectiveKind, bool) {
	switch name {
	case string(DirectiveServer), string(DirectiveDataSource), string(DirectiveEvent),
		string(DirectiveEndpoint), string(DirectiveResolver), string(DirectiveResolverSet):
		return DirectiveKind(name), true
	case legacyFunction:
		return DirectiveResolver, true
	case legacyFunctionSet:
		return DirectiveResolverSet, true
	}
	return "", false
}

// IsBuiltinDirective reports whether name is a directive defined by
// GraphQL itself. Those carry no meaning for code generation.
func IsBuiltinDirective(name string) bool {
	switch name {
	case "deprecated", "specifiedBy", "include", "skip", "oneOf", "defer", "stream":
		return true
	}
	return false
}

// Root operation type names.
const (
	RootQuery    = "Query"
	RootMutation = "Mutation"
)

// IsRoot reports whether name is a root operation type that may carry a
// GraphQLServer directive.
func IsRoot(name string) bool {
	return name == RootQuery || name == RootMutation
}

// ServerOptions are the throttling and auth settings of a server.
type ServerOptions struct {
	BurstLimit int    `json:"burstLimit,omitempty"`
	RateLimit  int    `json:"rateLimit,omitempty"`
	QuotaLimit int    `json:"quotaLimit,omitempty"`
	QuotaUnit  string `json:"quotaUnit,omitempty"`
	ApiKey     bool   `json:"apiKey,omitempty"`
	AuthMode   string `json:"authMode,omitempty"`
}

// Server is a deployable API. A server may span both root types; each
// contributes one Definition.
type Server struct {
	Name        string                            `json:"name"`
	Runtime     string                            `json:"runtime,omitempty"`
	Options     ServerOptions                     `json:"options"`
	Definitions *ordered.Map[string, *Definition] `json:"definitions"`
}

func NewServer(name string) *Server {
	return &Server{
		Name:        name,
		Definitions: ordered.NewMap[string, *Definition](),
	}
}

// Definition returns the definition for root, creating it if needed.
func (s *Server) Definition(root string) *Definition {
	if def, ok := s.Definitions.Get(root); ok {
		return def
	}
	def := &Definition{Root: root, Paths: ordered.NewMap[string, *EndpointPath]()}
	s.Definitions.Set(root, def)
	return def
}

// Operation finds an operation by id in any definition and path.
func (s *Server) Operation(id string) (*EndpointPath, *ResolverOperation, bool) {
	var (
		path *EndpointPath
		op   *ResolverOperation
	)
	s.Definitions.Each(func(_ string, def *Definition) bool {
		def.Paths.Each(func(_ string, p *EndpointPath) bool {
			if o, ok := p.Operations.Get(id); ok {
				path, op = p, o
				return false
			}
			return true
		})
		return op == nil
	})
	return path, op, op != nil
}

// Definition groups the paths one root type contributes to a server.
type Definition struct {
	Root  string                              `json:"root"`
	Paths *ordered.Map[string, *EndpointPath] `json:"paths"`
}

// EndpointOptions are per-path auth settings.
type EndpointOptions struct {
	AuthMode string `json:"authMode,omitempty"`
	ApiKey   bool   `json:"apiKey,omitempty"`
}

// EndpointPath is a URL path of a server and its operations, keyed by
// OperationID.
type EndpointPath struct {
	Path       string                                   `json:"path"`
	Options    EndpointOptions                          `json:"options"`
	Operations *ordered.Map[string, *ResolverOperation] `json:"operations"`
}

func NewEndpointPath(path string) *EndpointPath {
	return &EndpointPath{
		Path:       path,
		Operations: ordered.NewMap[string, *ResolverOperation](),
	}
}

type DataType string

const (
	DataSingle DataType = "single"
	DataList   DataType = "list"
)

// Parameter is an operation argument.
type Parameter struct {
	Name string   `json:"name"`
	Type *TypeRef `json:"type"`
}

// ResolverOperation is one query or mutation field served by a server.
type ResolverOperation struct {
	OperationID string   `json:"operationId"`
	Root        string   `json:"root"`
	DataType    DataType `json:"dataType"`
	// DataSchema names the result type; empty when the result is a scalar.
	DataSchema string      `json:"dataSchema,omitempty"`
	ResultType *TypeRef    `json:"resultType"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Resolver   *Resolver   `json:"resolver,omitempty"`
}

// ChainStep is a resolver chain step.
type ChainStep = chain.Step

// Resolver attaches a chain to an operation. Kind is DirectiveResolver for
// a method resolver and DirectiveResolverSet for a function set.
type Resolver struct {
	Kind  DirectiveKind `json:"kind"`
	Name  string        `json:"name"`
	Chain []ChainStep   `json:"chain"`
	// Implicit resolvers were synthesized for operations declared
	// without one.
	Implicit bool `json:"implicit,omitempty"`
}

// DataSource is a storage binding declared on a type.
type DataSource struct {
	Name       string `json:"name"`
	Kind       string `json:"kind,omitempty"`
	Schema     string `json:"schema"`
	Parameters Values `json:"parameters,omitempty"`
}

// Event is a change notification bound to a data source.
type Event struct {
	Name       string `json:"name"`
	Kind       string `json:"kind,omitempty"`
	Function   string `json:"function,omitempty"`
	Source     string `json:"source,omitempty"`
	Schema     string `json:"schema"`
	Parameters Values `json:"parameters,omitempty"`
}

// Function is a remote step together with the servers whose chains run it.
type Function struct {
	Run     string   `json:"run"`
	Servers []string `json:"servers"`
}

// ProjectModel is the compiler output.
type ProjectModel struct {
	Servers     *ordered.Map[string, *Server]     `json:"servers"`
	DataSources *ordered.Map[string, *DataSource] `json:"dataSources"`
	Events      *ordered.Map[string, *Event]      `json:"events"`
	Types       *TypeTable                        `json:"types"`
	// Functions is derived by the normalizer.
	Functions []Function `json:"functions,omitempty"`
}

func NewProjectModel() *ProjectModel {
	return &ProjectModel{
		Servers:     ordered.NewMap[string, *Server](),
		DataSources: ordered.NewMap[string, *DataSource](),
		Events:      ordered.NewMap[string, *Event](),
		Types:       NewTypeTable(),
	}
}

// EachOperation calls fn for every operation in declaration order.
func (m *ProjectModel) EachOperation(fn func(s *Server, p *EndpointPath, op *ResolverOperation)) {
	for _, s := range m.Servers.Values() {
		for _, def := range s.Definitions.Values() {
			for _, p := range def.Paths.Values() {
				for _, op := range p.Operations.Values() {
					fn(s, p, op)
				}
			}
		}
	}
}
