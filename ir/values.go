package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NamedValue is one member of Values.
type NamedValue struct {
	Name  string
	Value any
}

// Values is an ordered set of named values. It carries directive arguments
// and object samples. Member values are nil, string, int64, float64, bool,
// []any or Values.
type Values []NamedValue

// Get returns the value of name. An exact match wins over a
// case-insensitive one.
func (v Values) Get(name string) (any, bool) {
	for _, nv := range v {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	for _, nv := range v {
		if strings.EqualFold(nv.Name, name) {
			return nv.Value, true
		}
	}
	return nil, false
}

// First returns the value of the first name present.
func (v Values) First(names ...string) (any, bool) {
	for _, n := range names {
		if val, ok := v.Get(n); ok {
			return val, true
		}
	}
	return nil, false
}

// String returns the value of name as a string, or "" when absent.
func (v Values) String(names ...string) string {
	val, ok := v.First(names...)
	if !ok || val == nil {
		return ""
	}
	switch x := val.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Int returns the value of name as an int. Strings are parsed; anything
// unparsable yields 0.
func (v Values) Int(names ...string) int {
	val, _ := v.First(names...)
	switch x := val.(type) {
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// Bool returns the value of name as a bool.
func (v Values) Bool(names ...string) bool {
	val, _ := v.First(names...)
	switch x := val.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	}
	return false
}

// Object returns the value of name when it is an object.
func (v Values) Object(names ...string) Values {
	val, _ := v.First(names...)
	obj, _ := val.(Values)
	return obj
}

// List returns the value of name when it is a list. A single value is
// returned as a one element list.
func (v Values) List(names ...string) []any {
	val, ok := v.First(names...)
	if !ok || val == nil {
		return nil
	}
	if list, ok := val.([]any); ok {
		return list
	}
	return []any{val}
}

// MarshalJSON encodes v as a JSON object in member order.
func (v Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, nv := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(nv.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(nv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
