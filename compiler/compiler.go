// Package compiler walks schema declarations in source order and builds
// the project model: types, servers with their endpoints and resolver
// chains, data sources and events. Cross references are resolved and
// default samples synthesized once the walk completes.
package compiler

import (
	"context"
	"crypto/sha256"
	"fmt"
	"hash"
	"time"

	"github.com/simplify-framework/graphql/decl"
	"github.com/simplify-framework/graphql/internal/ctxlog"
	"github.com/simplify-framework/graphql/ir"
)

// helperTypes describe directive arguments and are never generated as
// models.
var helperTypes = map[string]bool{
	"GraphQLOptions":    true,
	"GraphQLDataIndex":  true,
	"FunctionInput":     true,
	"ChainInput":        true,
	"GraphQLEngineType": true,
	"AuthorizationMode": true,
	"GraphQLSourceType": true,
	"GraphQLEventType":  true,
	"GraphQLDataAccess": true,
}

type options struct {
	seed  []byte
	clock func() time.Time
}

// Option configures a compilation.
type Option func(*options)

// WithSeed fixes the sample generator seed. Without it the seed is
// derived from the declarations.
func WithSeed(seed []byte) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithClock sets the clock used for DateTime samples.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

type compiler struct {
	model *ir.ProjectModel
	// first declaration of each data source and event, for error messages
	declaredIn map[string]string
	// positions of declared types, for reference errors
	positions map[string]decl.Position
	// unions and interfaces, which fields may not reference
	abstract map[string]decl.Kind
}

// Compile builds a fresh ProjectModel from decls. It fails with a
// *CompilationError on the first problem.
func Compile(ctx context.Context, decls []decl.Declaration, opts ...Option) (*ir.ProjectModel, error) {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.seed == nil {
		o.seed = documentSeed(decls)
	}

	logger := ctxlog.FromContext(ctx)
	c := &compiler{
		model:      ir.NewProjectModel(),
		declaredIn: make(map[string]string),
		positions:  make(map[string]decl.Position),
		abstract:   make(map[string]decl.Kind),
	}

	var (
		cc  compileContext
		err error
	)
	for _, d := range decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("compiling declaration", "name", d.Name, "kind", d.Kind, "position", d.Position.String())
		if cc, err = c.declaration(cc, d); err != nil {
			return nil, err
		}
	}

	c.attachImplicitResolvers()
	if err := c.resolveReferences(); err != nil {
		return nil, err
	}

	s := newSampler(c.model.Types, sha256.Sum256(o.seed), o.clock())
	if err := s.fill(c.positions); err != nil {
		return nil, err
	}

	logger.Debug("compiled schema",
		"servers", c.model.Servers.Len(),
		"dataSources", c.model.DataSources.Len(),
		"events", c.model.Events.Len(),
		"objects", c.model.Types.Objects.Len(),
	)
	return c.model, nil
}

// documentSeed hashes the declaration shapes so identical documents get
// identical samples.
func documentSeed(decls []decl.Declaration) []byte {
	h := sha256.New()
	for _, d := range decls {
		writeSeed(h, "%s %s\n", d.Kind, d.Name)
		for _, f := range d.Fields {
			writeSeed(h, "  %s %s\n", f.Name, f.Type)
		}
		for _, v := range d.EnumValues {
			writeSeed(h, "  %s\n", v)
		}
	}
	return h.Sum(nil)
}

func writeSeed(h hash.Hash, format string, args ...any) {
	_, _ = fmt.Fprintf(h, format, args...)
}

func (c *compiler) declaration(cc compileContext, d decl.Declaration) (compileContext, error) {
	cc = cc.enter(d)

	switch d.Kind {
	case decl.KindObject, decl.KindInput, decl.KindEnum:
		if err := c.recordType(cc, d); err != nil {
			return cc, err
		}
	case decl.KindScalar:
		c.model.Types.Scalars = append(c.model.Types.Scalars, d.Name)
	case decl.KindUnion, decl.KindInterface:
		c.abstract[d.Name] = d.Kind
		c.positions[d.Name] = d.Position
	}

	var err error
	for _, dir := range d.Directives {
		if cc, err = c.typeDirective(cc.at(dir), d, dir); err != nil {
			return cc, err
		}
	}
	cc.directive = ""

	root := d.Kind == decl.KindObject && ir.IsRoot(d.Name)
	for _, f := range d.Fields {
		fc := cc.inField(f)
		if root {
			if cc, err = c.rootField(fc, d, f); err != nil {
				return cc, err
			}
			continue
		}
		if err := plainField(fc, f); err != nil {
			return cc, err
		}
	}
	cc.field = ""
	return cc, nil
}

// plainField rejects generator directives on fields outside Query and
// Mutation.
func plainField(cc compileContext, f decl.Field) error {
	for _, dir := range f.Directives {
		dc := cc.at(dir)
		_, ok, err := directiveKind(dc, dir)
		if err != nil {
			return err
		}
		if ok {
			return dc.errorf(ErrMisplacedDirective, "@%s is only allowed on fields of %s or %s", dir.Name, ir.RootQuery, ir.RootMutation)
		}
	}
	return nil
}

func (c *compiler) recordType(cc compileContext, d decl.Declaration) error {
	kind := typeKind(d.Kind)
	table := c.model.Types

	if existing, ok := table.Lookup(d.Name); ok {
		// Root types may be declared or extended more than once.
		if ir.IsRoot(d.Name) && existing.Kind == kind {
			existing.Fields = append(existing.Fields, fieldDefinitions(d.Fields)...)
			return nil
		}
		return cc.errorf(ErrDuplicateName, "type %q already declared at %s", d.Name, c.positions[d.Name])
	}

	def := &ir.TypeDefinition{
		Name:     d.Name,
		Kind:     kind,
		Fields:   fieldDefinitions(d.Fields),
		UserType: !ir.IsRoot(d.Name) && !helperTypes[d.Name],
	}
	if kind == ir.KindEnum {
		def.Values = append([]string(nil), d.EnumValues...)
	}
	table.Partition(kind).Set(d.Name, def)
	c.positions[d.Name] = d.Position
	return nil
}

func typeKind(k decl.Kind) ir.Kind {
	switch k {
	case decl.KindInput:
		return ir.KindInput
	case decl.KindEnum:
		return ir.KindEnum
	default:
		return ir.KindObject
	}
}

func fieldDefinitions(fields []decl.Field) []*ir.FieldDefinition {
	out := make([]*ir.FieldDefinition, 0, len(fields))
	for _, f := range fields {
		ref := typeRef(f.Type)
		out = append(out, &ir.FieldDefinition{
			Name:     f.Name,
			Type:     ref,
			Nullable: !ref.NonNull,
		})
	}
	return out
}

func typeRef(t *decl.Type) *ir.TypeRef {
	if t == nil {
		return &ir.TypeRef{Kind: ir.RefScalar, Name: ir.ScalarString}
	}
	if t.Elem != nil {
		return &ir.TypeRef{Kind: ir.RefList, Elem: typeRef(t.Elem), NonNull: t.NonNull}
	}
	kind := ir.RefNamed
	if ir.IsBuiltinScalar(t.Name) {
		kind = ir.RefScalar
	}
	return &ir.TypeRef{Kind: kind, Name: t.Name, NonNull: t.NonNull}
}

// attachImplicitResolvers gives every operation declared without a
// resolver a single step resolver running the operation. The resolver is
// named after the operation, prefixed by the server when that name is
// taken.
func (c *compiler) attachImplicitResolvers() {
	c.model.EachOperation(func(s *ir.Server, _ *ir.EndpointPath, op *ir.ResolverOperation) {
		if op.Resolver != nil {
			return
		}
		name := op.OperationID
		if _, taken := c.declaredIn["resolver/"+name]; taken {
			name = s.Name + "_" + op.OperationID
		}
		c.declaredIn["resolver/"+name] = op.Root + "." + op.OperationID
		op.Resolver = &ir.Resolver{
			Kind:     ir.DirectiveResolver,
			Name:     name,
			Chain:    []ir.ChainStep{singleStep(op.OperationID)},
			Implicit: true,
		}
	})
}
