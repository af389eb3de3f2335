package schema

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/contractcheck/packages/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func messageSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Object(
		Required("message"),
		Property("message", TypeString),
		AdditionalProperties(true),
	)
	require.NoError(t, err)
	return s
}

func TestValidate_DeleteSuccessMessage(t *testing.T) {
	s := messageSchema(t)
	v := jsonvalue.MustParse(`{"message":"Registro excluído com sucesso"}`)

	assert.Empty(t, Validate(v, s))
}

func TestValidate_EmptyObjectMissingMessage(t *testing.T) {
	s := messageSchema(t)

	violations := Validate(jsonvalue.MustParse(`{}`), s)

	require.Len(t, violations, 1)
	assert.Equal(t, MissingRequiredField, violations[0].Kind)
	assert.Equal(t, "message", violations[0].Path)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	s, err := Object(
		Required("message", "_id"),
		Property("message", TypeString),
		Property("_id", TypeString),
		Property("count", TypeNumber),
		AdditionalProperties(false),
	)
	require.NoError(t, err)

	v := jsonvalue.MustParse(`{"message": 1, "count": "x", "extra": true, "other": null}`)
	violations := Validate(v, s)

	require.Len(t, violations, 5)
	assert.Equal(t, Violation{Kind: MissingRequiredField, Path: "_id", Expected: "present", Actual: "absent"}, violations[0])
	assert.Equal(t, Violation{Kind: TypeMismatch, Path: "message", Expected: "string", Actual: "number"}, violations[1])
	assert.Equal(t, Violation{Kind: TypeMismatch, Path: "count", Expected: "number", Actual: "string"}, violations[2])
	assert.Equal(t, UnexpectedField, violations[3].Kind)
	assert.Equal(t, "extra", violations[3].Path)
	assert.Equal(t, UnexpectedField, violations[4].Kind)
	assert.Equal(t, "other", violations[4].Path)
}

func TestValidate_ExactlyOneMissingPerField(t *testing.T) {
	s, err := Object(
		Required("nome", "email", "password", "administrador"),
		Property("nome", TypeString),
		Property("email", TypeString),
		Property("password", TypeString),
		Property("administrador", TypeString),
	)
	require.NoError(t, err)

	v := jsonvalue.MustParse(`{"nome": "Fulano", "password": 123}`)
	violations := Validate(v, s)

	missing := map[string]int{}
	for _, vi := range violations {
		if vi.Kind == MissingRequiredField {
			missing[vi.Path]++
		}
	}
	assert.Equal(t, map[string]int{"email": 1, "administrador": 1}, missing)
	assert.Contains(t, violations, Violation{Kind: TypeMismatch, Path: "password", Expected: "string", Actual: "number"})
}

func TestValidate_AdditionalPropertiesAllowed(t *testing.T) {
	s := messageSchema(t)
	v := jsonvalue.MustParse(`{"message": "ok", "_id": "abc", "extra": [1, 2]}`)

	assert.Empty(t, Validate(v, s))
}

func TestValidate_RootTypeMismatch(t *testing.T) {
	s := messageSchema(t)

	tests := []struct {
		name   string
		json   string
		actual string
	}{
		{"array", `[]`, "array"},
		{"string", `"message"`, "string"},
		{"null", `null`, "null"},
		{"number", `12`, "number"},
		{"boolean", `false`, "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := Validate(jsonvalue.MustParse(tt.json), s)
			require.Len(t, violations, 1)
			assert.Equal(t, Violation{Kind: TypeMismatch, Path: RootPath, Expected: "object", Actual: tt.actual}, violations[0])
		})
	}
}

func TestValidate_NestedPaths(t *testing.T) {
	item, err := Object(
		Required("name"),
		Property("name", TypeString),
		AdditionalProperties(false),
	)
	require.NoError(t, err)

	meta, err := Object(Required("total"), Property("total", TypeInteger))
	require.NoError(t, err)

	s, err := Object(
		Required("items", "meta"),
		PropertySchema("items", ArrayOf(item)),
		PropertySchema("meta", meta),
	)
	require.NoError(t, err)

	v := jsonvalue.MustParse(`{
		"items": [{"name": "a"}, {"name": "b"}, {"name": 3, "x": 1}, {}],
		"meta": {"total": 2.5}
	}`)
	violations := Validate(v, s)

	require.Len(t, violations, 4)
	assert.Equal(t, "items[2].name", violations[0].Path)
	assert.Equal(t, TypeMismatch, violations[0].Kind)
	assert.Equal(t, "items[2].x", violations[1].Path)
	assert.Equal(t, UnexpectedField, violations[1].Kind)
	assert.Equal(t, "items[3].name", violations[2].Path)
	assert.Equal(t, MissingRequiredField, violations[2].Kind)
	assert.Equal(t, "meta.total", violations[3].Path)
	assert.Equal(t, "integer", violations[3].Expected)
}

func TestValidate_QuotesAmbiguousKeys(t *testing.T) {
	inner, err := Object(Required("a.b"), Property("x[0]", TypeString))
	require.NoError(t, err)
	s, err := Object(
		Required("a.b"),
		PropertySchema("user", inner),
		AdditionalProperties(false),
	)
	require.NoError(t, err)

	v := jsonvalue.MustParse(`{"user": {"x[0]": 1}, "": true}`)
	violations := Validate(v, s)

	require.Len(t, violations, 4)
	assert.Equal(t, `["a.b"]`, violations[0].Path)
	assert.Equal(t, `user["a.b"]`, violations[1].Path)
	assert.Equal(t, `user["x[0]"]`, violations[2].Path)
	assert.Equal(t, TypeMismatch, violations[2].Kind)
	assert.Equal(t, `[""]`, violations[3].Path)
	assert.Equal(t, UnexpectedField, violations[3].Kind)
}

func TestValidate_IntegerBeyondInt64(t *testing.T) {
	s, err := Object(Property("n", TypeInteger))
	require.NoError(t, err)

	assert.Empty(t, Validate(jsonvalue.MustParse(`{"n": 1e20}`), s))
	assert.Empty(t, Validate(jsonvalue.MustParse(`{"n": -1e19}`), s))
	assert.Len(t, Validate(jsonvalue.MustParse(`{"n": 2.5}`), s), 1)
}

func TestValidate_RootArray(t *testing.T) {
	s := ArrayOf(messageSchema(t))

	violations := Validate(jsonvalue.MustParse(`[{"message": "a"}, {"message": false}]`), s)

	require.Len(t, violations, 1)
	assert.Equal(t, "[1].message", violations[0].Path)
}

func TestValidate_NilSchema(t *testing.T) {
	assert.Empty(t, Validate(jsonvalue.MustParse(`{"a": 1}`), nil))
}

func TestValidate_Idempotent(t *testing.T) {
	s, err := Object(
		Required("a", "b"),
		Property("a", TypeString),
		AdditionalProperties(false),
	)
	require.NoError(t, err)
	v := jsonvalue.MustParse(`{"a": 1, "c": 2, "d": 3}`)

	first := Validate(v, s)
	second := Validate(v, s)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestValidate_ConcurrentUse(t *testing.T) {
	s := messageSchema(t)
	good := jsonvalue.MustParse(`{"message": "ok"}`)
	bad := jsonvalue.MustParse(`{"message": 1}`)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.Empty(t, Validate(good, s))
			} else {
				assert.Len(t, Validate(bad, s), 1)
			}
		}(i)
	}
	wg.Wait()
}

func TestObject_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"unknown type", []Option{Property("message", Type("strnig"))}},
		{"duplicate property", []Option{Property("a", TypeString), Property("a", TypeNumber)}},
		{"duplicate required", []Option{Required("a", "a")}},
		{"empty required name", []Option{Required("")}},
		{"empty property name", []Option{Property("", TypeString)}},
		{"nil nested schema", []Option{PropertySchema("a", nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Object(tt.opts...)
			assert.Nil(t, s)
			var defErr *DefinitionError
			require.ErrorAs(t, err, &defErr)
			assert.Contains(t, err.Error(), "schema definition")
		})
	}
}

func TestOfType_UnknownType(t *testing.T) {
	_, err := OfType(Type("uuid"))
	var defErr *DefinitionError
	assert.ErrorAs(t, err, &defErr)
}

func TestMustObject_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustObject(Property("x", Type("date")))
	})
}

func TestViolation_String(t *testing.T) {
	assert.Equal(t, "message: required field missing",
		Violation{Kind: MissingRequiredField, Path: "message"}.String())
	assert.Equal(t, "_id: expected type string, got number",
		Violation{Kind: TypeMismatch, Path: "_id", Expected: "string", Actual: "number"}.String())
}

// The validator should agree with a full JSON Schema implementation on
// whether a value conforms, for the subset of keywords it supports.
func TestValidate_AgreesWithGoJSONSchema(t *testing.T) {
	item := MustObject(Required("name"), Property("name", TypeString), AdditionalProperties(false))
	s := MustObject(
		Required("message", "_id"),
		Property("message", TypeString),
		Property("_id", TypeString),
		Property("quantidade", TypeInteger),
		PropertySchema("items", ArrayOf(item)),
		AdditionalProperties(false),
	)

	docBytes, err := json.Marshal(s.Document())
	require.NoError(t, err)
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(docBytes))
	require.NoError(t, err)

	bodies := []string{
		`{"message": "ok", "_id": "1"}`,
		`{"message": "ok"}`,
		`{"message": "ok", "_id": "1", "extra": 1}`,
		`{"message": "ok", "_id": 1}`,
		`{"message": "ok", "_id": "1", "quantidade": 1.5}`,
		`{"message": "ok", "_id": "1", "quantidade": 3}`,
		`{"message": "ok", "_id": "1", "items": [{"name": "a"}]}`,
		`{"message": "ok", "_id": "1", "items": [{"name": "a", "b": 2}]}`,
		`[]`,
	}

	for _, body := range bodies {
		result, err := compiled.Validate(gojsonschema.NewStringLoader(body))
		require.NoError(t, err)

		violations := Validate(jsonvalue.MustParse(body), s)
		assert.Equal(t, result.Valid(), len(violations) == 0, "body %s: %v", body, violations)
	}
}
