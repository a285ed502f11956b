// Package normalize flattens a compiled project model into render
// contexts: ordered lists with position flags, case variants of every
// name, pre-formatted samples, and the derived step and function indices.
package normalize

import (
	"slices"

	"github.com/simplify-framework/graphql/chain"
	"github.com/simplify-framework/graphql/ir"
)

// Normalize builds the render context for model. It also records the
// derived Functions index on model. Equal models yield equal projects.
func Normalize(model *ir.ProjectModel, info Info) *Project {
	n := &normalizer{
		model:  model,
		steps:  make(map[string]*Step),
		remote: make(map[string]*functionIndex),
	}
	return n.project(info)
}

type functionIndex struct {
	servers []string
}

type normalizer struct {
	model *ir.ProjectModel

	steps     map[string]*Step
	stepOrder []string

	remote      map[string]*functionIndex
	remoteOrder []string
}

func (n *normalizer) project(info Info) *Project {
	p := &Project{
		Name:    NewNames(info.Name),
		ID:      info.ID,
		Module:  info.Module,
		Runtime: info.Runtime,
	}

	types := n.model.Types
	objects := n.types(types.Objects.Values())
	inputs := n.types(types.Inputs.Values())
	enums := n.types(types.Enums.Values())
	p.Objects = NewList(objects)
	p.Inputs = NewList(inputs)
	p.Enums = NewList(enums)

	var models []*Type
	for _, group := range [][]*Type{objects, inputs, enums} {
		for _, t := range group {
			if t.UserType {
				models = append(models, t)
			}
		}
	}
	p.Models = NewList(models)

	var (
		servers   []*Server
		resolvers []*Resolver
	)
	for _, s := range n.model.Servers.Values() {
		server := n.server(s)
		servers = append(servers, server)
		resolvers = append(resolvers, server.Resolvers.Values()...)
	}
	p.Servers = NewList(servers)
	p.Resolvers = NewList(resolvers)

	p.DataSources = NewList(n.dataSources())
	p.Events = NewList(n.events())
	n.bindDataSources(objects, p.DataSources.Values())

	steps := make([]*Step, 0, len(n.stepOrder))
	for _, run := range n.stepOrder {
		steps = append(steps, n.steps[run])
	}
	p.Steps = NewList(steps)

	functions := make([]*Function, 0, len(n.remoteOrder))
	index := make([]ir.Function, 0, len(n.remoteOrder))
	for _, run := range n.remoteOrder {
		fi := n.remote[run]
		names := make([]Names, 0, len(fi.servers))
		for _, s := range fi.servers {
			names = append(names, NewNames(s))
		}
		functions = append(functions, &Function{Run: NewNames(run), Servers: NewList(names)})
		index = append(index, ir.Function{Run: run, Servers: slices.Clone(fi.servers)})
	}
	p.Functions = NewList(functions)
	n.model.Functions = index

	return p
}

func (n *normalizer) types(defs []*ir.TypeDefinition) []*Type {
	out := make([]*Type, 0, len(defs))
	for _, def := range defs {
		out = append(out, n.typ(def))
	}
	return out
}

func (n *normalizer) typ(def *ir.TypeDefinition) *Type {
	table := n.model.Types
	t := &Type{
		Name:     NewNames(def.Name),
		Kind:     def.Kind,
		IsObject: def.Kind == ir.KindObject,
		IsInput:  def.Kind == ir.KindInput,
		IsEnum:   def.Kind == ir.KindEnum,
		UserType: def.UserType,
	}

	fields := make([]*Field, 0, len(def.Fields))
	for _, f := range def.Fields {
		fields = append(fields, &Field{
			Name:     NewNames(f.Name),
			Type:     f.Type.String(),
			GoType:   GoType(f.Type, table),
			Nullable: f.Nullable,
			IsList:   f.Type.IsList(),
			Sample:   FormatSample(f.DefaultSample, f.Type, table),
		})
	}
	t.Fields = NewList(fields)

	values := make([]*EnumValue, 0, len(def.Values))
	for _, v := range def.Values {
		values = append(values, &EnumValue{Name: NewNames(v), Value: v})
	}
	t.Values = NewList(values)
	return t
}

func (n *normalizer) server(s *ir.Server) *Server {
	table := n.model.Types
	server := &Server{
		Name:    NewNames(s.Name),
		Runtime: s.Runtime,
		Options: s.Options,
	}

	var (
		definitions []*Definition
		allPaths    []*Path
		resolvers   []*Resolver
		functions   []Names
		seen        = make(map[string]bool)
	)
	for _, def := range s.Definitions.Values() {
		var paths []*Path
		for _, ep := range def.Paths.Values() {
			path := &Path{
				Path:    ep.Path,
				Name:    pathNames(ep.Path),
				Root:    NewNames(def.Root),
				Options: ep.Options,
			}
			var ops []*Operation
			for _, op := range ep.Operations.Values() {
				operation := &Operation{
					ID:         NewNames(op.OperationID),
					Root:       NewNames(op.Root),
					Path:       ep.Path,
					DataType:   op.DataType,
					IsList:     op.DataType == ir.DataList,
					DataSchema: NewNames(op.DataSchema),
					ResultType: op.ResultType.String(),
					GoType:     GoType(op.ResultType, table),
				}
				params := make([]*Parameter, 0, len(op.Parameters))
				for _, param := range op.Parameters {
					params = append(params, &Parameter{
						Name:   NewNames(param.Name),
						Type:   param.Type.String(),
						GoType: GoType(param.Type, table),
					})
				}
				operation.Parameters = NewList(params)

				resolver := n.resolver(s.Name, ep.Path, op)
				operation.Resolver = resolver
				resolvers = append(resolvers, resolver)
				for _, step := range op.Resolver.Chain {
					if step.Remote && !seen[step.Run] {
						seen[step.Run] = true
						functions = append(functions, NewNames(step.Run))
					}
				}
				ops = append(ops, operation)
			}
			path.Operations = NewList(ops)
			paths = append(paths, path)
		}
		allPaths = append(allPaths, paths...)
		definitions = append(definitions, &Definition{Root: NewNames(def.Root), Paths: NewList(paths)})
	}

	server.Definitions = NewList(definitions)
	server.Paths = NewList(allPaths)
	var routes []string
	for _, p := range allPaths {
		if !slices.Contains(routes, p.Path) {
			routes = append(routes, p.Path)
		}
	}
	server.Routes = NewList(routes)
	server.Resolvers = NewList(resolvers)
	server.Functions = NewList(functions)
	return server
}

func (n *normalizer) resolver(server, path string, op *ir.ResolverOperation) *Resolver {
	r := op.Resolver
	steps := make([]*Step, 0, len(r.Chain))
	for _, cs := range r.Chain {
		step := n.step(cs)
		steps = append(steps, step)
		if cs.Remote {
			n.addFunction(cs.Run, server)
		}
	}
	return &Resolver{
		Name:      NewNames(r.Name),
		Kind:      r.Kind,
		IsSet:     r.Kind == ir.DirectiveResolverSet,
		Implicit:  r.Implicit,
		Server:    NewNames(server),
		Operation: NewNames(op.OperationID),
		Path:      path,
		Steps:     NewList(steps),
	}
}

// step converts cs and records its Run in the Steps index. The first
// declaration of a Run wins when several chains use it.
func (n *normalizer) step(cs ir.ChainStep) *Step {
	step := &Step{
		Run:           NewNames(cs.Run),
		OnSuccess:     NewNames(cs.OnSuccess),
		OnFailure:     NewNames(cs.OnFailure),
		OnSuccessDone: cs.OnSuccess == chain.Done,
		OnFailureDone: cs.OnFailure == chain.Done,
		RetryCount:    cs.RetryCount,
		Remote:        cs.Remote,
	}
	if existing, ok := n.steps[cs.Run]; ok {
		existing.Remote = existing.Remote || cs.Remote
		return step
	}
	indexed := *step
	n.steps[cs.Run] = &indexed
	n.stepOrder = append(n.stepOrder, cs.Run)
	return step
}

func (n *normalizer) addFunction(run, server string) {
	fi, ok := n.remote[run]
	if !ok {
		fi = &functionIndex{}
		n.remote[run] = fi
		n.remoteOrder = append(n.remoteOrder, run)
	}
	if !slices.Contains(fi.servers, server) {
		fi.servers = append(fi.servers, server)
	}
}

func (n *normalizer) dataSources() []*DataSource {
	var out []*DataSource
	for _, ds := range n.model.DataSources.Values() {
		settings := make([]*Setting, 0, len(ds.Parameters))
		for _, nv := range ds.Parameters {
			settings = append(settings, &Setting{Name: NewNames(nv.Name), Value: ds.Parameters.String(nv.Name)})
		}
		var events []Names
		for _, ev := range n.model.Events.Values() {
			if ev.Source == ds.Name {
				events = append(events, NewNames(ev.Name))
			}
		}
		out = append(out, &DataSource{
			Name:       NewNames(ds.Name),
			Kind:       ds.Kind,
			Schema:     NewNames(ds.Schema),
			Parameters: NewList(settings),
			Events:     NewList(events),
		})
	}
	return out
}

func (n *normalizer) events() []*Event {
	var out []*Event
	for _, ev := range n.model.Events.Values() {
		out = append(out, &Event{
			Name:     NewNames(ev.Name),
			Kind:     ev.Kind,
			Function: NewNames(ev.Function),
			Source:   NewNames(ev.Source),
			Schema:   NewNames(ev.Schema),
		})
	}
	return out
}

func (n *normalizer) bindDataSources(objects []*Type, sources []*DataSource) {
	for _, t := range objects {
		var names []Names
		for _, ds := range sources {
			if ds.Schema.Value == t.Name.Value {
				names = append(names, ds.Name)
			}
		}
		t.DataSources = NewList(names)
	}
}
