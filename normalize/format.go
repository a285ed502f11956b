package normalize

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/simplify-framework/graphql/internal/strcase"
	"github.com/simplify-framework/graphql/ir"
)

// GoType maps a GraphQL type to the Go type used in generated models.
// Object and input references are always pointers so a sample may be nil.
func GoType(ref *ir.TypeRef, types *ir.TypeTable) string {
	if ref == nil {
		return "any"
	}
	if ref.Kind == ir.RefList {
		return "[]" + GoType(ref.Elem, types)
	}
	switch ref.Name {
	case ir.ScalarString, ir.ScalarID, ir.ScalarDateTime:
		return "string"
	case ir.ScalarInt:
		return "int64"
	case ir.ScalarFloat:
		return "float64"
	case ir.ScalarBoolean:
		return "bool"
	}
	if types.IsScalar(ref.Name) {
		return "string"
	}
	if def, ok := types.Lookup(ref.Name); ok && def.Kind == ir.KindEnum {
		return strcase.ToPascalCase(ref.Name)
	}
	return "*" + strcase.ToPascalCase(ref.Name)
}

// FormatSample renders a sample value as a Go expression of the type
// GoType reports for ref.
func FormatSample(value any, ref *ir.TypeRef, types *ir.TypeTable) string {
	if ref == nil {
		return FormatValue(value)
	}
	if value == nil {
		return zeroValue(ref, types)
	}

	if ref.Kind == ir.RefList {
		list, _ := value.([]any)
		elems := make([]string, 0, len(list))
		for _, v := range list {
			elems = append(elems, FormatSample(v, ref.Elem, types))
		}
		return fmt.Sprintf("%s{%s}", GoType(ref, types), strings.Join(elems, ", "))
	}

	if obj, ok := value.(ir.Values); ok {
		def, _ := types.Lookup(ref.Name)
		return formatStruct(strcase.ToPascalCase(ref.Name), obj, def, types)
	}

	if def, ok := types.Lookup(ref.Name); ok && def.Kind == ir.KindEnum {
		return fmt.Sprintf("%s(%s)", strcase.ToPascalCase(ref.Name), FormatValue(value))
	}
	return FormatValue(value)
}

func formatStruct(typeName string, obj ir.Values, def *ir.TypeDefinition, types *ir.TypeTable) string {
	if len(obj) == 0 {
		return fmt.Sprintf("&%s{}", typeName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "&%s{", typeName)
	for i, nv := range obj {
		if i > 0 {
			b.WriteString(", ")
		}
		var ref *ir.TypeRef
		if def != nil {
			if f, ok := def.Field(nv.Name); ok {
				ref = f.Type
			}
		}
		fmt.Fprintf(&b, "%s: %s", strcase.ToPascalCase(nv.Name), FormatSample(nv.Value, ref, types))
	}
	b.WriteString("}")
	return b.String()
}

func zeroValue(ref *ir.TypeRef, types *ir.TypeTable) string {
	t := GoType(ref, types)
	switch {
	case ref.Kind == ir.RefList, strings.HasPrefix(t, "*"):
		return "nil"
	case t == "string":
		return `""`
	case t == "bool":
		return "false"
	case t == "int64":
		return "0"
	case t == "float64":
		return "0.0"
	default:
		return t + `("")`
	}
}

// FormatValue renders a scalar as a Go literal.
func FormatValue(value any) string {
	if value == nil {
		return "nil"
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map:
		if v.IsNil() {
			return "nil"
		}
	case reflect.String:
		return strconv.Quote(v.String())
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float32, reflect.Float64:
		s := strconv.FormatFloat(v.Float(), 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return fmt.Sprintf("%#v", value)
}
