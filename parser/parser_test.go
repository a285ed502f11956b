package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/simplify-framework/graphql/decl"
	"github.com/simplify-framework/graphql/internal/testutil"
)

func TestParse(t *testing.T) {
	t.Parallel()

	const sdl = `
enum Color { RED GREEN }

input Filter { color: Color }

type Query @GraphQLServer(Name: "Shop", Options: {BurstLimit: 10, ApiKey: true}) {
  items(filter: Filter): [Item!]! @GraphQLEndpoint(Path: "/items")
    @GraphQLResolverSet(Name: "listItems", Chains: [{Run: "load", onSuccess: "DONE", onFailure: "DONE", RetryOnFailure: 2}])
}

type Item {
  id: ID!
  price: Float
}
`
	got, err := Parse("shop.graphql", sdl)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	str := func(s string) decl.Value { return decl.Value{Kind: decl.ValueString, Raw: s} }
	want := []decl.Declaration{
		{Kind: decl.KindEnum, Name: "Color", EnumValues: []string{"RED", "GREEN"}},
		{
			Kind: decl.KindInput,
			Name: "Filter",
			Fields: []decl.Field{
				{Name: "color", Type: &decl.Type{Name: "Color"}},
			},
		},
		{
			Kind: decl.KindObject,
			Name: "Query",
			Directives: []decl.Directive{{
				Name: "GraphQLServer",
				Arguments: []decl.DirectiveArgument{
					{Name: "Name", Value: str("Shop")},
					{Name: "Options", Value: decl.Value{Kind: decl.ValueObject, Fields: []decl.ObjectField{
						{Name: "BurstLimit", Value: decl.Value{Kind: decl.ValueInt, Raw: "10"}},
						{Name: "ApiKey", Value: decl.Value{Kind: decl.ValueBoolean, Raw: "true"}},
					}}},
				},
			}},
			Fields: []decl.Field{{
				Name: "items",
				Type: &decl.Type{Elem: &decl.Type{Name: "Item", NonNull: true}, NonNull: true},
				Arguments: []decl.Argument{
					{Name: "filter", Type: &decl.Type{Name: "Filter"}},
				},
				Directives: []decl.Directive{
					{
						Name:      "GraphQLEndpoint",
						Arguments: []decl.DirectiveArgument{{Name: "Path", Value: str("/items")}},
					},
					{
						Name: "GraphQLResolverSet",
						Arguments: []decl.DirectiveArgument{
							{Name: "Name", Value: str("listItems")},
							{Name: "Chains", Value: decl.Value{Kind: decl.ValueList, List: []decl.Value{{
								Kind: decl.ValueObject,
								Fields: []decl.ObjectField{
									{Name: "Run", Value: str("load")},
									{Name: "onSuccess", Value: str("DONE")},
									{Name: "onFailure", Value: str("DONE")},
									{Name: "RetryOnFailure", Value: decl.Value{Kind: decl.ValueInt, Raw: "2"}},
								},
							}}}},
						},
					},
				},
			}},
		},
		{
			Kind: decl.KindObject,
			Name: "Item",
			Fields: []decl.Field{
				{Name: "id", Type: &decl.Type{Name: "ID", NonNull: true}},
				{Name: "price", Type: &decl.Type{Name: "Float"}},
			},
		},
	}

	if diff := cmp.Diff(want, got, cmpopts.IgnoreTypes(decl.Position{})); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Positions(t *testing.T) {
	t.Parallel()

	got, err := Parse("pos.graphql", "type A { a: String }\n\ntype B { b: String }\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Parse() returned %d declarations, want 2", len(got))
	}
	if got[1].Position.Line != 3 || got[1].Position.Source != "pos.graphql" {
		t.Fatalf("B position = %+v, want line 3 of pos.graphql", got[1].Position)
	}
}

func TestParse_ExtensionsKeepSourceOrder(t *testing.T) {
	t.Parallel()

	sdl := `type Query { a: Int }
extend type Query @GraphQLServer(Name: "Second") { b: Int }
type Tail { c: Int }
`
	got, err := Parse("ext.graphql", sdl)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var names []string
	for _, d := range got {
		names = append(names, d.Name)
	}
	if diff := cmp.Diff([]string{"Query", "Query", "Tail"}, names); diff != "" {
		t.Fatalf("declaration order mismatch (-want +got):\n%s", diff)
	}
	if len(got[1].Directives) != 1 || got[1].Directives[0].Name != "GraphQLServer" {
		t.Fatalf("extension directives = %+v", got[1].Directives)
	}
}

func TestParse_Kinds(t *testing.T) {
	t.Parallel()

	sdl := `scalar URL
interface Node { id: ID! }
union Result = A | B
type A { id: ID! }
`
	got, err := Parse("kinds.graphql", sdl)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var kinds []decl.Kind
	for _, d := range got {
		kinds = append(kinds, d.Kind)
	}
	want := []decl.Kind{decl.KindScalar, decl.KindInterface, decl.KindUnion, decl.KindObject}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Error(t *testing.T) {
	t.Parallel()

	if _, err := Parse("bad.graphql", "type {"); err == nil {
		t.Fatalf("Parse() error = nil, want syntax error")
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	got, err := ParseFile(testutil.FixturePath(t, "books.graphql"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	kinds := map[string]decl.Kind{}
	for _, d := range got {
		kinds[d.Name] = d.Kind
	}
	for name, want := range map[string]decl.Kind{
		"DateTime":   decl.KindScalar,
		"AuthorType": decl.KindEnum,
		"Book":       decl.KindObject,
		"ChainInput": decl.KindInput,
		"Mutation":   decl.KindObject,
	} {
		if kinds[name] != want {
			t.Errorf("kind of %s = %q, want %q", name, kinds[name], want)
		}
	}
	if got[0].Position.Source != "books.graphql" {
		t.Fatalf("source name = %q, want books.graphql", got[0].Position.Source)
	}
}
