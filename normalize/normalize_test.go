package normalize

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/simplify-framework/graphql/compiler"
	"github.com/simplify-framework/graphql/internal/testutil"
	"github.com/simplify-framework/graphql/ir"
	"github.com/simplify-framework/graphql/parser"
)

func compile(t *testing.T, sdl string) *ir.ProjectModel {
	t.Helper()
	decls, err := parser.Parse("test.graphql", sdl)
	if err != nil {
		t.Fatalf("parser.Parse() error = %v", err)
	}
	model, err := compiler.Compile(context.Background(), decls, compiler.WithClock(func() time.Time {
		return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("compiler.Compile() error = %v", err)
	}
	return model
}

func TestNewList(t *testing.T) {
	t.Parallel()

	l := NewList([]string{"a", "b", "c"})
	if l.IsEmpty || l.Len != 3 {
		t.Fatalf("NewList() = %+v, want three items", l)
	}
	want := []Item[string]{
		{Value: "a", Index: 0, IsFirst: true, HasMore: true},
		{Value: "b", Index: 1, HasMore: true},
		{Value: "c", Index: 2, IsLast: true},
	}
	if diff := cmp.Diff(want, l.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	if empty := NewList[string](nil); !empty.IsEmpty || empty.Len != 0 {
		t.Fatalf("NewList(nil) = %+v, want empty", empty)
	}
}

func TestNewNames(t *testing.T) {
	t.Parallel()

	want := Names{
		Value:  "addNewBook",
		Pascal: "AddNewBook",
		Camel:  "addNewBook",
		Kebab:  "add-new-book",
		Snake:  "add_new_book",
		Text:   "add new book",
	}
	if diff := cmp.Diff(want, NewNames("addNewBook")); diff != "" {
		t.Fatalf("NewNames() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_FunctionsAndSteps(t *testing.T) {
	t.Parallel()

	model := compile(t, `
type Query @GraphQLServer(Name: "Public") {
  a: Int @GraphQLEndpoint @GraphQLResolverSet(Name: "ra", Chains: [
    {Run: "load", onSuccess: "save", onFailure: "DONE", Remote: true}
    {Run: "save", onSuccess: "DONE", onFailure: "DONE"}
  ])
}
type Mutation @GraphQLServer(Name: "Admin") {
  b: Int @GraphQLEndpoint @GraphQLResolverSet(Name: "rb", Chains: [
    {Run: "load", onSuccess: "DONE", onFailure: "DONE", Remote: true}
  ])
  c: Int @GraphQLEndpoint(Path: "/c") @GraphQLResolverSet(Name: "rc", Chains: [
    {Run: "load", onSuccess: "DONE", onFailure: "DONE", Remote: true}
  ])
}
`)

	p := Normalize(model, Info{Name: "shop"})

	var steps []string
	for _, s := range p.Steps.Values() {
		steps = append(steps, s.Run.Value)
	}
	if diff := cmp.Diff([]string{"load", "save"}, steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}

	want := []ir.Function{{Run: "load", Servers: []string{"Public", "Admin"}}}
	if diff := cmp.Diff(want, model.Functions); diff != "" {
		t.Fatalf("functions index mismatch (-want +got):\n%s", diff)
	}
	if p.Functions.Len != 1 || p.Functions.Items[0].Value.Servers.Len != 2 {
		t.Fatalf("project functions = %+v", p.Functions)
	}

	admin := p.Servers.Items[1].Value
	if admin.Functions.Len != 1 || admin.Functions.Items[0].Value.Value != "load" {
		t.Fatalf("admin server functions = %+v", admin.Functions)
	}
	if admin.Paths.Len != 2 || admin.Paths.Items[1].Value.Name.Value != "c" {
		t.Fatalf("admin paths = %+v", admin.Paths)
	}
	if p.Resolvers.Len != 3 {
		t.Fatalf("resolvers = %d, want 3", p.Resolvers.Len)
	}
}

func TestNormalize_Fixture(t *testing.T) {
	t.Parallel()

	model := compile(t, testutil.ReadFixture(t, "books.graphql"))
	p := Normalize(model, Info{Name: "book-store", Module: "example.com/books"})

	var models []string
	for _, m := range p.Models.Values() {
		models = append(models, m.Name.Value)
	}
	if diff := cmp.Diff([]string{"Author", "Book", "AuthorInput", "AuthorType"}, models); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}

	book := p.Models.Items[1].Value
	if diff := cmp.Diff([]Names{NewNames("BookTable")}, book.DataSources.Values()); diff != "" {
		t.Fatalf("book data sources mismatch (-want +got):\n%s", diff)
	}

	goTypes := map[string]string{}
	samples := map[string]string{}
	for _, f := range book.Fields.Values() {
		goTypes[f.Name.Value] = f.GoType
		samples[f.Name.Value] = f.Sample
	}
	wantTypes := map[string]string{
		"id":         "string",
		"title":      "string",
		"author":     "*Author",
		"comments":   "[]string",
		"outofstock": "bool",
		"price":      "float64",
		"stock":      "int64",
		"published":  "string",
	}
	if diff := cmp.Diff(wantTypes, goTypes); diff != "" {
		t.Fatalf("go types mismatch (-want +got):\n%s", diff)
	}
	if got := samples["published"]; got != `"2024-01-02T03:04:05Z"` {
		t.Errorf("published sample = %s", got)
	}
	if got := samples["author"]; len(got) < 9 || got[:9] != "&Author{I" {
		t.Errorf("author sample = %s, want an &Author literal", got)
	}

	ds := p.DataSources.Items[0].Value
	if ds.Events.Len != 1 || ds.Events.Items[0].Value.Value != "BookChanged" {
		t.Errorf("data source events = %+v", ds.Events)
	}
	if ds.Parameters.Len != 1 || ds.Parameters.Items[0].Value.Value != "id" {
		t.Errorf("data source parameters = %+v", ds.Parameters)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()

	model := compile(t, testutil.ReadFixture(t, "books.graphql"))
	first := Normalize(model, Info{Name: "books"})
	second := Normalize(model, Info{Name: "books"})

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("two normalizations differ (-first +second):\n%s", diff)
	}
}

func TestFormatSample(t *testing.T) {
	t.Parallel()

	types := ir.NewTypeTable()
	types.Enums.Set("Color", &ir.TypeDefinition{Name: "Color", Kind: ir.KindEnum, Values: []string{"RED"}})
	types.Objects.Set("Item", &ir.TypeDefinition{
		Name: "Item",
		Kind: ir.KindObject,
		Fields: []*ir.FieldDefinition{
			{Name: "name", Type: &ir.TypeRef{Kind: ir.RefScalar, Name: "String"}},
			{Name: "color", Type: &ir.TypeRef{Kind: ir.RefNamed, Name: "Color"}},
		},
	})

	str := &ir.TypeRef{Kind: ir.RefScalar, Name: "String"}
	item := &ir.TypeRef{Kind: ir.RefNamed, Name: "Item"}

	tests := []struct {
		name  string
		value any
		ref   *ir.TypeRef
		want  string
	}{
		{"string", "a\"b", str, `"a\"b"`},
		{"int", int64(7), &ir.TypeRef{Kind: ir.RefScalar, Name: "Int"}, "7"},
		{"whole float", 3.0, &ir.TypeRef{Kind: ir.RefScalar, Name: "Float"}, "3.0"},
		{"enum", "RED", &ir.TypeRef{Kind: ir.RefNamed, Name: "Color"}, `Color("RED")`},
		{"scalar list", []any{"x", "y"}, &ir.TypeRef{Kind: ir.RefList, Elem: str}, `[]string{"x", "y"}`},
		{"null object", nil, item, "nil"},
		{"null string", nil, str, `""`},
		{
			"object",
			ir.Values{{Name: "name", Value: "n"}, {Name: "color", Value: "RED"}},
			item,
			`&Item{Name: "n", Color: Color("RED")}`,
		},
		{
			"object list",
			[]any{ir.Values{}},
			&ir.TypeRef{Kind: ir.RefList, Elem: item},
			`[]*Item{&Item{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatSample(tt.value, tt.ref, types); got != tt.want {
				t.Fatalf("FormatSample() = %s, want %s", got, tt.want)
			}
		})
	}
}
