package jsonvalue

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		name string
		json string
		kind Kind
	}{
		{"null", `null`, Null},
		{"true", `true`, Bool},
		{"false", `false`, Bool},
		{"integer", `42`, Number},
		{"float", `3.5`, Number},
		{"string", `"hello"`, String},
		{"array", `[1, 2]`, Array},
		{"object", `{"a": 1}`, Object},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{``, `{`, `{"a":}`, `<html>`} {
		_, err := Parse([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestParse_ObjectKeepsOrder(t *testing.T) {
	v := MustParse(`{"z": 1, "a": "x", "m": [true, null]}`)

	members := v.Members()
	require.Len(t, members, 3)
	assert.Equal(t, "z", members[0].Key)
	assert.Equal(t, "a", members[1].Key)
	assert.Equal(t, "m", members[2].Key)

	m, ok := v.Get("m")
	require.True(t, ok)
	items := m.Items()
	require.Len(t, items, 2)
	b, isBool := items[0].Bool()
	assert.True(t, isBool)
	assert.True(t, b)
	assert.True(t, items[1].IsNull())
}

func TestParse_UnicodeString(t *testing.T) {
	v := MustParse(`{"message": "Registro excluído com sucesso"}`)
	msg, ok := v.Get("message")
	require.True(t, ok)
	s, isStr := msg.Str()
	assert.True(t, isStr)
	assert.Equal(t, "Registro excluído com sucesso", s)
}

func TestValue_IsInteger(t *testing.T) {
	assert.True(t, MustParse(`10`).IsInteger())
	assert.False(t, MustParse(`10.5`).IsInteger())
	assert.False(t, MustParse(`"10"`).IsInteger())
	assert.True(t, MustParse(`1e20`).IsInteger())
	assert.True(t, MustParse(`-1e19`).IsInteger())
	assert.True(t, NumberValue(math.MaxFloat64).IsInteger())
	assert.False(t, NumberValue(math.Inf(1)).IsInteger())
	assert.False(t, NumberValue(math.NaN()).IsInteger())
}

func TestValue_Equal(t *testing.T) {
	a := MustParse(`{"a": 1, "b": [1, "x"]}`)
	b := MustParse(`{"b": [1, "x"], "a": 1}`)
	c := MustParse(`{"a": 1, "b": [1, "y"]}`)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, MustParse(`1`).Equal(MustParse(`"1"`)))
}

func TestObjectValue_DuplicateKeyReplaces(t *testing.T) {
	v := ObjectValue(
		Member{Key: "a", Value: NumberValue(1)},
		Member{Key: "b", Value: NumberValue(2)},
		Member{Key: "a", Value: NumberValue(3)},
	)
	assert.Equal(t, 2, v.Len())
	a, _ := v.Get("a")
	n, _ := a.Number()
	assert.Equal(t, float64(3), n)
}

func TestParse_WideObject(t *testing.T) {
	const n = 50000
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `"k%d":%d`, i, i)
	}
	sb.WriteString(`,"k0":"last"}`)

	start := time.Now()
	v, err := Parse([]byte(sb.String()))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	require.Equal(t, n, v.Len())
	members := v.Members()
	assert.Equal(t, "k0", members[0].Key)
	assert.Equal(t, "k1", members[1].Key)
	assert.Equal(t, fmt.Sprintf("k%d", n-1), members[n-1].Key)

	first, ok := v.Get("k0")
	require.True(t, ok)
	s, _ := first.Str()
	assert.Equal(t, "last", s)
	assert.True(t, v.Has("k49999"))
	assert.True(t, v.Equal(v))
}

func TestFromInterface(t *testing.T) {
	v, err := FromInterface(map[string]any{
		"name":  "Fulano",
		"admin": false,
		"tags":  []any{"a", 1},
		"meta":  nil,
	})
	require.NoError(t, err)
	assert.Equal(t, Object, v.Kind())

	members := v.Members()
	require.Len(t, members, 4)
	assert.Equal(t, "admin", members[0].Key, "keys are sorted")

	_, err = FromInterface(struct{}{})
	assert.Error(t, err)
}

func TestValue_Interface(t *testing.T) {
	v := MustParse(`{"a": [1, true, null, "s"]}`)
	assert.Equal(t, map[string]any{"a": []any{float64(1), true, nil, "s"}}, v.Interface())
}
