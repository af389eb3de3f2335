package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/jsonvalue"
)

// ViolationKind classifies a Violation.
type ViolationKind string

const (
	MissingRequiredField ViolationKind = "MissingRequiredField"
	TypeMismatch         ViolationKind = "TypeMismatch"
	UnexpectedField      ViolationKind = "UnexpectedField"
	BodyNotJSON          ViolationKind = "BodyNotJson"
)

// RootPath is the path reported for violations on the value itself.
const RootPath = "$"

// Violation is one detected mismatch between a value and a schema.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	Path     string        `json:"path"`
	Expected string        `json:"expected"`
	Actual   string        `json:"actual"`
}

func (v Violation) String() string {
	switch v.Kind {
	case MissingRequiredField:
		return fmt.Sprintf("%s: required field missing", v.Path)
	case TypeMismatch:
		return fmt.Sprintf("%s: expected type %s, got %s", v.Path, v.Expected, v.Actual)
	case UnexpectedField:
		return fmt.Sprintf("%s: unexpected field (value %s)", v.Path, v.Actual)
	case BodyNotJSON:
		return fmt.Sprintf("%s: body is not JSON: %s", v.Path, v.Actual)
	}
	return fmt.Sprintf("%s: %s (expected %s, got %s)", v.Path, v.Kind, v.Expected, v.Actual)
}

// Validate checks value against s and returns every violation found, in a
// deterministic order. It returns nil iff value conforms.
func Validate(value jsonvalue.Value, s *Schema) []Violation {
	if s == nil {
		return nil
	}
	var out []Violation
	s.validate("", value, &out)
	return out
}

func (s *Schema) validate(path string, v jsonvalue.Value, out *[]Violation) {
	if !matchesType(v, s.typ) {
		*out = append(*out, Violation{
			Kind:     TypeMismatch,
			Path:     display(path),
			Expected: s.typ.String(),
			Actual:   actualType(v),
		})
		return
	}

	switch v.Kind() {
	case jsonvalue.Object:
		s.validateObject(path, v, out)
	case jsonvalue.Array:
		if s.items == nil {
			return
		}
		for i, item := range v.Items() {
			s.items.validate(path+"["+strconv.Itoa(i)+"]", item, out)
		}
	}
}

func (s *Schema) validateObject(path string, v jsonvalue.Value, out *[]Violation) {
	for _, name := range s.required {
		if !v.Has(name) {
			*out = append(*out, Violation{
				Kind:     MissingRequiredField,
				Path:     join(path, name),
				Expected: "present",
				Actual:   "absent",
			})
		}
	}

	for _, f := range s.properties {
		child, ok := v.Get(f.name)
		if !ok {
			continue
		}
		f.schema.validate(join(path, f.name), child, out)
	}

	if s.additional {
		return
	}
	for _, m := range v.Members() {
		if _, declared := s.index[m.Key]; declared {
			continue
		}
		*out = append(*out, Violation{
			Kind:     UnexpectedField,
			Path:     join(path, m.Key),
			Expected: "no additional properties",
			Actual:   m.Value.String(),
		})
	}
}

func matchesType(v jsonvalue.Value, t Type) bool {
	switch t {
	case TypeAny:
		return true
	case TypeString:
		return v.Kind() == jsonvalue.String
	case TypeNumber:
		return v.Kind() == jsonvalue.Number
	case TypeInteger:
		return v.IsInteger()
	case TypeBoolean:
		return v.Kind() == jsonvalue.Bool
	case TypeObject:
		return v.Kind() == jsonvalue.Object
	case TypeArray:
		return v.Kind() == jsonvalue.Array
	case TypeNull:
		return v.Kind() == jsonvalue.Null
	}
	return false
}

func actualType(v jsonvalue.Value) string {
	return v.Kind().String()
}

// join appends an object key to path. Keys that would make the dotted form
// ambiguous are written as quoted bracket segments.
func join(parent, name string) string {
	if name == "" || strings.ContainsAny(name, `.[]"`) {
		return parent + "[" + strconv.Quote(name) + "]"
	}
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func display(path string) string {
	if path == "" {
		return RootPath
	}
	return path
}
