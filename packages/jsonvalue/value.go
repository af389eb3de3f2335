// Package jsonvalue provides an explicit tagged representation of JSON values.
//
// A Value is one of null, boolean, number, string, array or object. Object
// members keep their document order so that anything walking a Value (the
// schema validator in particular) produces deterministic output.
package jsonvalue

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	b       bool
	num     float64
	str     string
	items   []Value
	members []Member
	keys    map[string]int
}

func NullValue() Value            { return Value{kind: Null} }
func BoolValue(b bool) Value      { return Value{kind: Bool, b: b} }
func NumberValue(n float64) Value { return Value{kind: Number, num: n} }
func StringValue(s string) Value  { return Value{kind: String, str: s} }

// ArrayValue builds an array from the given items.
func ArrayValue(items ...Value) Value {
	return Value{kind: Array, items: append([]Value(nil), items...)}
}

// ObjectValue builds an object from members. A later member with a
// duplicate key replaces the earlier one in place.
func ObjectValue(members ...Member) Value {
	v := Value{
		kind:    Object,
		members: make([]Member, 0, len(members)),
		keys:    make(map[string]int, len(members)),
	}
	for _, m := range members {
		if i, ok := v.keys[m.Key]; ok {
			v.members[i].Value = m.Value
			continue
		}
		v.keys[m.Key] = len(v.members)
		v.members = append(v.members, m)
	}
	return v
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean payload and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == Bool }

// Number returns the numeric payload and whether v is a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == Number }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == String }

// IsInteger reports whether v is a finite number with no fractional part.
// Magnitude is not bounded by int64.
func (v Value) IsInteger() bool {
	return v.kind == Number && !math.IsInf(v.num, 0) && math.Trunc(v.num) == v.num
}

// Len returns the number of items or members, or 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	}
	return 0
}

// Items returns a copy of the array items.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return append([]Value(nil), v.items...)
}

// Members returns a copy of the object members in document order.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return append([]Member(nil), v.members...)
}

// Get looks up an object member.
func (v Value) Get(key string) (Value, bool) {
	if i := v.index(key); i >= 0 {
		return v.members[i].Value, true
	}
	return Value{}, false
}

// Has reports whether the object has a member named key.
func (v Value) Has(key string) bool {
	return v.index(key) >= 0
}

func (v Value) index(key string) int {
	if v.kind != Object {
		return -1
	}
	if i, ok := v.keys[key]; ok {
		return i
	}
	return -1
}

// Equal reports deep equality. Object member order is not significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		return v.num == o.num
	case String:
		return v.str == o.str
	case Array:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.members) != len(o.members) {
			return false
		}
		for _, m := range v.members {
			other, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v to the map[string]any / []any form used by
// encoding/json.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.num
	case String:
		return v.str
	case Array:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}

// String renders a short human readable form, used in violation messages.
func (v Value) String() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.b)
	case Number:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case String:
		return strconv.Quote(v.str)
	case Array:
		return fmt.Sprintf("[array with %d items]", len(v.items))
	case Object:
		return fmt.Sprintf("{object with %d keys}", len(v.members))
	}
	return ""
}

// Parse parses raw JSON bytes. Invalid JSON is reported as an error rather
// than silently yielding null.
func Parse(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, fmt.Errorf("invalid JSON")
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// MustParse is Parse for literals in tests and package-level tables.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("jsonvalue: %v: %s", err, s))
	}
	return v
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.True:
		return BoolValue(true)
	case gjson.False:
		return BoolValue(false)
	case gjson.Number:
		return NumberValue(r.Num)
	case gjson.String:
		return StringValue(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var items []Value
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})
			return Value{kind: Array, items: items}
		}
		var members []Member
		r.ForEach(func(key, item gjson.Result) bool {
			members = append(members, Member{Key: key.String(), Value: fromResult(item)})
			return true
		})
		return ObjectValue(members...)
	}
	return NullValue()
}

// FromInterface converts the output of encoding/json (or a yaml decoder)
// into a Value. Map keys are sorted since Go maps carry no order.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case string:
		return StringValue(t), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, item := range t {
			v, err := FromInterface(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return Value{kind: Array, items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, 0, len(t))
		for _, k := range keys {
			v, err := FromInterface(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			members = append(members, Member{Key: k, Value: v})
		}
		return ObjectValue(members...), nil
	}
	return Value{}, fmt.Errorf("unsupported type %T", x)
}
