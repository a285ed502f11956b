package compiler

import (
	"fmt"
	"strconv"

	"github.com/simplify-framework/graphql/chain"
	"github.com/simplify-framework/graphql/decl"
	"github.com/simplify-framework/graphql/ir"
)

const defaultPath = "/"

// directiveKind classifies dir. Built-in GraphQL directives report ok
// false with a nil error.
func directiveKind(cc compileContext, dir decl.Directive) (ir.DirectiveKind, bool, error) {
	if kind, ok := ir.LookupDirective(dir.Name); ok {
		return kind, true, nil
	}
	if ir.IsBuiltinDirective(dir.Name) {
		return "", false, nil
	}
	return "", false, cc.errorf(ErrUnknownDirective, "@%s is not a recognized directive", dir.Name)
}

func arguments(cc compileContext, dir decl.Directive) (ir.Values, error) {
	args := make(ir.Values, 0, len(dir.Arguments))
	for _, a := range dir.Arguments {
		v, err := value(a.Value)
		if err != nil {
			return nil, cc.errorf(ErrInvalidArgument, "argument %s: %w", a.Name, err)
		}
		args = append(args, ir.NamedValue{Name: a.Name, Value: v})
	}
	return args, nil
}

// value converts a literal into the generic representation used by
// ir.Values. Numbers must fit an int64 or a finite float64.
func value(v decl.Value) (any, error) {
	switch v.Kind {
	case decl.ValueString, decl.ValueEnum, decl.ValueVariable:
		return v.Raw, nil
	case decl.ValueInt:
		n, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s is not a 64-bit integer", v.Raw)
		}
		return n, nil
	case decl.ValueFloat:
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s is not a finite number", v.Raw)
		}
		return f, nil
	case decl.ValueBoolean:
		return v.Raw == "true", nil
	case decl.ValueList:
		list := make([]any, 0, len(v.List))
		for i, item := range v.List {
			elem, err := value(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, elem)
		}
		return list, nil
	case decl.ValueObject:
		obj := make(ir.Values, 0, len(v.Fields))
		for _, f := range v.Fields {
			field, err := value(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			obj = append(obj, ir.NamedValue{Name: f.Name, Value: field})
		}
		return obj, nil
	default:
		return nil, nil
	}
}

func requireName(cc compileContext, args ir.Values) (string, error) {
	name := args.String("Name")
	if name == "" {
		return "", cc.errorf(ErrMissingArgument, "Name is required")
	}
	return name, nil
}

// typeDirective handles a directive placed on a type declaration.
func (c *compiler) typeDirective(cc compileContext, d decl.Declaration, dir decl.Directive) (compileContext, error) {
	kind, ok, err := directiveKind(cc, dir)
	if err != nil || !ok {
		return cc, err
	}
	args, err := arguments(cc, dir)
	if err != nil {
		return cc, err
	}

	switch kind {
	case ir.DirectiveServer:
		return c.server(cc, d, args)
	case ir.DirectiveDataSource:
		return c.dataSource(cc, d, args)
	case ir.DirectiveEvent:
		return c.event(cc, d, args)
	default:
		return cc, cc.errorf(ErrMisplacedDirective, "@%s belongs on a field of Query or Mutation", dir.Name)
	}
}

func (c *compiler) server(cc compileContext, d decl.Declaration, args ir.Values) (compileContext, error) {
	if !ir.IsRoot(d.Name) {
		return cc, cc.errorf(ErrMisplacedDirective, "@%s is only allowed on %s or %s", ir.DirectiveServer, ir.RootQuery, ir.RootMutation)
	}
	name, err := requireName(cc, args)
	if err != nil {
		return cc, err
	}

	s, ok := c.model.Servers.Get(name)
	if !ok {
		s = ir.NewServer(name)
		c.model.Servers.Set(name, s)
	}
	if runtime := args.String("Runtime"); runtime != "" {
		s.Runtime = runtime
	}
	if opts := args.Object("Options"); opts != nil {
		s.Options = ir.ServerOptions{
			BurstLimit: opts.Int("BurstLimit"),
			RateLimit:  opts.Int("RateLimit"),
			QuotaLimit: opts.Int("QuotaLimit"),
			QuotaUnit:  opts.String("QuotaUnit"),
			ApiKey:     opts.Bool("ApiKey"),
			AuthMode:   opts.String("AuthMode"),
		}
	}
	s.Definition(d.Name)
	return cc.withServer(name), nil
}

func (c *compiler) dataSource(cc compileContext, d decl.Declaration, args ir.Values) (compileContext, error) {
	name, err := requireName(cc, args)
	if err != nil {
		return cc, err
	}
	key := "datasource/" + name
	if first, ok := c.declaredIn[key]; ok {
		return cc, cc.errorf(ErrDuplicateName, "data source %q already declared on %s", name, first)
	}
	c.declaredIn[key] = d.Name

	c.model.DataSources.Set(name, &ir.DataSource{
		Name:       name,
		Kind:       args.String("Kind"),
		Schema:     d.Name,
		Parameters: args.Object("Parameters"),
	})
	return cc.withDataSource(name), nil
}

func (c *compiler) event(cc compileContext, d decl.Declaration, args ir.Values) (compileContext, error) {
	name, err := requireName(cc, args)
	if err != nil {
		return cc, err
	}
	key := "event/" + name
	if first, ok := c.declaredIn[key]; ok {
		return cc, cc.errorf(ErrDuplicateName, "event %q already declared on %s", name, first)
	}
	c.declaredIn[key] = d.Name

	source := args.String("Source")
	if source == "" {
		source = cc.dataSource
	}
	c.model.Events.Set(name, &ir.Event{
		Name:       name,
		Kind:       args.String("Kind"),
		Function:   args.String("Function"),
		Source:     source,
		Schema:     d.Name,
		Parameters: args.Object("Parameters"),
	})
	return cc, nil
}

// rootField handles the directives of one Query or Mutation field. The
// endpoint path set by @GraphQLEndpoint governs the resolver directives
// that follow it on the same field.
func (c *compiler) rootField(cc compileContext, d decl.Declaration, f decl.Field) (compileContext, error) {
	path := defaultPath
	for _, dir := range f.Directives {
		dc := cc.at(dir)
		kind, ok, err := directiveKind(dc, dir)
		if err != nil {
			return cc, err
		}
		if !ok {
			continue
		}
		args, err := arguments(dc, dir)
		if err != nil {
			return cc, err
		}

		switch kind {
		case ir.DirectiveEndpoint:
			if path, err = c.endpoint(dc, d, f, args); err != nil {
				return cc, err
			}
		case ir.DirectiveResolver, ir.DirectiveResolverSet:
			if err := c.resolver(dc, d, f, path, kind, args); err != nil {
				return cc, err
			}
		default:
			return cc, dc.errorf(ErrMisplacedDirective, "@%s belongs on a type declaration", dir.Name)
		}
	}
	return cc, nil
}

func (c *compiler) currentServer(cc compileContext) (*ir.Server, error) {
	s, ok := c.model.Servers.Get(cc.server)
	if !ok {
		return nil, cc.errorf(ErrDirectiveOrder, "no @%s declared before this directive", ir.DirectiveServer)
	}
	return s, nil
}

func (c *compiler) endpoint(cc compileContext, d decl.Declaration, f decl.Field, args ir.Values) (string, error) {
	s, err := c.currentServer(cc)
	if err != nil {
		return "", err
	}
	path := args.String("Path")
	if path == "" {
		path = defaultPath
	}

	for _, def := range s.Definitions.Values() {
		if p, ok := def.Paths.Get(path); ok && p.Operations.Has(f.Name) {
			return "", cc.errorf(ErrDuplicateName, "operation %q already declared on path %q of server %q", f.Name, path, s.Name)
		}
	}

	def := s.Definition(d.Name)
	ep, ok := def.Paths.Get(path)
	if !ok {
		ep = ir.NewEndpointPath(path)
		def.Paths.Set(path, ep)
	}
	if opts := args.Object("Options"); opts != nil {
		ep.Options = ir.EndpointOptions{
			AuthMode: opts.String("AuthMode"),
			ApiKey:   opts.Bool("ApiKey"),
		}
	}

	result := typeRef(f.Type)
	op := &ir.ResolverOperation{
		OperationID: f.Name,
		Root:        d.Name,
		DataType:    ir.DataSingle,
		ResultType:  result,
	}
	if result.IsList() {
		op.DataType = ir.DataList
	}
	if named := result.Named(); !ir.IsBuiltinScalar(named) {
		op.DataSchema = named
	}
	for _, a := range f.Arguments {
		op.Parameters = append(op.Parameters, ir.Parameter{Name: a.Name, Type: typeRef(a.Type)})
	}
	ep.Operations.Set(f.Name, op)
	return path, nil
}

func (c *compiler) resolver(cc compileContext, d decl.Declaration, f decl.Field, path string, kind ir.DirectiveKind, args ir.Values) error {
	s, err := c.currentServer(cc)
	if err != nil {
		return err
	}
	name, err := requireName(cc, args)
	if err != nil {
		return err
	}

	var op *ir.ResolverOperation
	if def, ok := s.Definitions.Get(d.Name); ok {
		if ep, ok := def.Paths.Get(path); ok {
			op, _ = ep.Operations.Get(f.Name)
		}
	}
	if op == nil {
		return cc.errorf(ErrDirectiveOrder, "resolver %q has no operation %q on path %q; declare @%s first", name, f.Name, path, ir.DirectiveEndpoint)
	}
	if op.Resolver != nil {
		return cc.errorf(ErrDuplicateName, "operation %q already has resolver %q", f.Name, op.Resolver.Name)
	}

	key := "resolver/" + name
	if first, ok := c.declaredIn[key]; ok {
		return cc.errorf(ErrDuplicateName, "resolver %q already declared on %s", name, first)
	}
	c.declaredIn[key] = d.Name + "." + f.Name

	steps, err := chainSteps(cc, name, args.List("Chains"))
	if err != nil {
		return err
	}
	op.Resolver = &ir.Resolver{Kind: kind, Name: name, Chain: steps}
	return nil
}

func singleStep(run string) ir.ChainStep {
	return ir.ChainStep{Run: run, OnSuccess: chain.Done, OnFailure: chain.Done}
}

// chainSteps reads the Chains argument. Step keys are matched case
// insensitively and the legacy Next/Other spellings are accepted.
func chainSteps(cc compileContext, name string, chains []any) ([]ir.ChainStep, error) {
	if len(chains) == 0 {
		return []ir.ChainStep{singleStep(name)}, nil
	}

	steps := make([]ir.ChainStep, 0, len(chains))
	for i, item := range chains {
		obj, ok := item.(ir.Values)
		if !ok {
			return nil, cc.errorf(ErrInvalidChain, "resolver %q step %d is not an object", name, i)
		}
		step := ir.ChainStep{
			Run:        obj.String("Run"),
			OnSuccess:  obj.String("onSuccess", "Next"),
			OnFailure:  obj.String("onFailure", "Other"),
			RetryCount: obj.Int("RetryOnFailure", "RetryCount", "Retry"),
			Remote:     obj.Bool("Remote"),
		}
		if step.OnSuccess == "" {
			step.OnSuccess = chain.Done
		}
		if step.OnFailure == "" {
			step.OnFailure = chain.Done
		}
		steps = append(steps, step)
	}

	if err := chain.Validate(steps); err != nil {
		return nil, cc.errorf(ErrInvalidChain, "resolver %q: %w", name, err)
	}
	return steps, nil
}
