package schema

import (
	"fmt"
	"strings"
)

// Type is a declared JSON type.
type Type string

const (
	TypeAny     Type = ""
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeNull    Type = "null"
)

func (t Type) String() string {
	if t == TypeAny {
		return "any"
	}
	return string(t)
}

func (t Type) valid() bool {
	switch t {
	case TypeAny, TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeObject, TypeArray, TypeNull:
		return true
	}
	return false
}

// ParseType converts a type name as written in a schema document.
func ParseType(name string) (Type, error) {
	t := Type(strings.TrimSpace(name))
	if t == TypeAny || !t.valid() {
		return "", &DefinitionError{Reason: fmt.Sprintf("unknown type %q", name)}
	}
	return t, nil
}

// DefinitionError reports a malformed schema. It is returned at construction
// time and never from validation.
type DefinitionError struct {
	Path   string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Path == "" {
		return "schema definition: " + e.Reason
	}
	return fmt.Sprintf("schema definition at %s: %s", e.Path, e.Reason)
}

type field struct {
	name   string
	schema *Schema
}

// Schema is an immutable description of an expected JSON shape. It is safe
// for concurrent use.
type Schema struct {
	typ        Type
	required   []string
	properties []field
	index      map[string]int
	additional bool
	items      *Schema
}

// Type returns the declared type of the value the schema describes.
func (s *Schema) Type() Type { return s.typ }

// Required returns the required field names in declaration order.
func (s *Schema) Required() []string { return append([]string(nil), s.required...) }

// AdditionalProperties reports whether undeclared fields are permitted.
func (s *Schema) AdditionalProperties() bool { return s.additional }

// Properties returns the declared field names in declaration order.
func (s *Schema) Properties() []string {
	names := make([]string, len(s.properties))
	for i, f := range s.properties {
		names[i] = f.name
	}
	return names
}

// Property returns the schema declared for a field.
func (s *Schema) Property(name string) (*Schema, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.properties[i].schema, true
}

// Items returns the schema applied to array items, if any.
func (s *Schema) Items() *Schema { return s.items }

// Option configures an object schema under construction.
type Option func(*builder)

type builder struct {
	s    *Schema
	errs []*DefinitionError
}

func (b *builder) fail(path, format string, args ...any) {
	b.errs = append(b.errs, &DefinitionError{Path: path, Reason: fmt.Sprintf(format, args...)})
}

// Required declares fields that must be present.
func Required(names ...string) Option {
	return func(b *builder) {
		for _, name := range names {
			if name == "" {
				b.fail("", "empty required field name")
				continue
			}
			for _, existing := range b.s.required {
				if existing == name {
					b.fail(name, "duplicate required field")
				}
			}
			b.s.required = append(b.s.required, name)
		}
	}
}

// Property declares a field with a primitive type.
func Property(name string, t Type) Option {
	return func(b *builder) {
		if !t.valid() {
			b.fail(name, "unknown type %q", string(t))
			return
		}
		b.add(name, &Schema{typ: t, additional: true, index: map[string]int{}})
	}
}

// PropertySchema declares a field described by a nested schema.
func PropertySchema(name string, nested *Schema) Option {
	return func(b *builder) {
		if nested == nil {
			b.fail(name, "nil nested schema")
			return
		}
		b.add(name, nested)
	}
}

// AdditionalProperties sets whether fields outside the declared set are
// permitted. The default is true, as in JSON Schema.
func AdditionalProperties(allowed bool) Option {
	return func(b *builder) {
		b.s.additional = allowed
	}
}

func (b *builder) add(name string, s *Schema) {
	if name == "" {
		b.fail("", "empty property name")
		return
	}
	if _, dup := b.s.index[name]; dup {
		b.fail(name, "duplicate property")
		return
	}
	b.s.index[name] = len(b.s.properties)
	b.s.properties = append(b.s.properties, field{name: name, schema: s})
}

// Object builds an object schema.
func Object(opts ...Option) (*Schema, error) {
	b := &builder{s: &Schema{typ: TypeObject, additional: true, index: map[string]int{}}}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	return b.s, nil
}

// ArrayOf builds an array schema whose items must match items. A nil items
// schema accepts any array.
func ArrayOf(items *Schema) *Schema {
	return &Schema{typ: TypeArray, additional: true, index: map[string]int{}, items: items}
}

// OfType builds a schema that only constrains the type of a value.
func OfType(t Type) (*Schema, error) {
	if !t.valid() {
		return nil, &DefinitionError{Reason: fmt.Sprintf("unknown type %q", string(t))}
	}
	return &Schema{typ: t, additional: true, index: map[string]int{}}, nil
}

// MustObject is Object for package-level schema tables. It panics on a
// malformed definition.
func MustObject(opts ...Option) *Schema {
	s, err := Object(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Document exports the schema as a JSON Schema document.
func (s *Schema) Document() map[string]any {
	doc := map[string]any{}
	if s.typ != TypeAny {
		doc["type"] = string(s.typ)
	}
	if len(s.required) > 0 {
		req := make([]any, len(s.required))
		for i, r := range s.required {
			req[i] = r
		}
		doc["required"] = req
	}
	if len(s.properties) > 0 {
		props := make(map[string]any, len(s.properties))
		for _, f := range s.properties {
			props[f.name] = f.schema.Document()
		}
		doc["properties"] = props
	}
	if s.typ == TypeObject {
		doc["additionalProperties"] = s.additional
	}
	if s.items != nil {
		doc["items"] = s.items.Document()
	}
	return doc
}
