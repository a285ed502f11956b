package normalize

import (
	"strings"

	"github.com/simplify-framework/graphql/internal/strcase"
)

// Names carries a name together with its case variants.
type Names struct {
	Value  string
	Pascal string
	Camel  string
	Kebab  string
	Snake  string
	Text   string
}

func NewNames(s string) Names {
	return Names{
		Value:  s,
		Pascal: strcase.ToPascalCase(s),
		Camel:  strcase.ToCamelCase(s),
		Kebab:  strcase.ToKebabCase(s),
		Snake:  strcase.ToSnakeCase(s),
		Text:   strcase.ToText(s),
	}
}

func (n Names) String() string {
	return n.Value
}

// IsZero reports whether the name is empty.
func (n Names) IsZero() bool {
	return n.Value == ""
}

// pathNames names an endpoint path, e.g. "/book/admin" becomes
// "book_admin" and "/" becomes "root".
func pathNames(path string) Names {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return NewNames("root")
	}
	return NewNames(strings.NewReplacer("/", "_", "{", "", "}", "").Replace(trimmed))
}
