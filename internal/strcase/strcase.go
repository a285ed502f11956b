// Package strcase derives the case variants of schema names used by the
// generated sources: Pascal for Go identifiers, snake and kebab for file
// names, and space separated text for documents.
package strcase

import (
	"unicode"
	"unicode/utf8"

	iancoleman "github.com/iancoleman/strcase"
)

// ToPascalCase converts "add_new-book" or "addNewBook" into "AddNewBook".
func ToPascalCase(s string) string {
	return iancoleman.ToCamel(s)
}

func ToCamelCase(s string) string {
	return lowerFirst(iancoleman.ToCamel(s))
}

func ToSnakeCase(s string) string {
	return iancoleman.ToSnake(s)
}

func ToKebabCase(s string) string {
	return iancoleman.ToKebab(s)
}

// ToText splits s into lower case words separated by spaces.
func ToText(s string) string {
	return iancoleman.ToDelimited(s, ' ')
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
