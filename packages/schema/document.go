package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/contractcheck/packages/jsonvalue"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a JSON Schema document (JSON or YAML) from disk.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := LoadDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadDocument converts a JSON Schema document into a Schema. Only type,
// required, properties, additionalProperties and items are interpreted;
// other keywords are accepted and ignored. The document is compiled with
// gojsonschema first so that a structurally invalid schema is rejected
// with a *DefinitionError before any value is validated against it.
// Properties keep the order in which the document declares them.
func LoadDocument(data []byte) (*Schema, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, &DefinitionError{Reason: fmt.Sprintf("cannot parse document: %v", err)}
	}
	if doc.Kind() != jsonvalue.Object {
		return nil, &DefinitionError{Reason: "document must be an object"}
	}

	compiled, err := json.Marshal(doc.Interface())
	if err != nil {
		return nil, &DefinitionError{Reason: fmt.Sprintf("cannot encode document: %v", err)}
	}
	if _, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(compiled)); err != nil {
		return nil, &DefinitionError{Reason: err.Error()}
	}

	return fromDocument("", doc)
}

// parseDocument reads JSON through gjson and anything else as YAML,
// keeping mapping keys in document order either way.
func parseDocument(data []byte) (jsonvalue.Value, error) {
	if gjson.ValidBytes(data) {
		return jsonvalue.Parse(data)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return jsonvalue.Value{}, err
	}
	return fromNode(&node)
}

func fromNode(n *yaml.Node) (jsonvalue.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return jsonvalue.Value{}, fmt.Errorf("empty document")
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		members := make([]jsonvalue.Member, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return jsonvalue.Value{}, fmt.Errorf("%s: %w", n.Content[i].Value, err)
			}
			members = append(members, jsonvalue.Member{Key: n.Content[i].Value, Value: v})
		}
		return jsonvalue.ObjectValue(members...), nil
	case yaml.SequenceNode:
		items := make([]jsonvalue.Value, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return jsonvalue.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return jsonvalue.ArrayValue(items...), nil
	}

	var scalar any
	if err := n.Decode(&scalar); err != nil {
		return jsonvalue.Value{}, err
	}
	if v, err := jsonvalue.FromInterface(scalar); err == nil {
		return v, nil
	}
	return jsonvalue.StringValue(n.Value), nil
}

func fromDocument(path string, doc jsonvalue.Value) (*Schema, error) {
	t := TypeAny
	if rawType, ok := doc.Get("type"); ok {
		name, isStr := rawType.Str()
		if !isStr {
			return nil, &DefinitionError{Path: display(path), Reason: "type must be a single type name"}
		}
		parsed, err := ParseType(name)
		if err != nil {
			return nil, &DefinitionError{Path: display(path), Reason: fmt.Sprintf("unknown type %q", name)}
		}
		t = parsed
	}

	hasProps := doc.Has("properties")
	hasRequired := doc.Has("required")
	hasItems := doc.Has("items")

	if t == TypeArray || (t == TypeAny && hasItems && !hasProps) {
		var items *Schema
		if rawItems, ok := doc.Get("items"); ok && rawItems.Kind() == jsonvalue.Object {
			nested, err := fromDocument(path+"[]", rawItems)
			if err != nil {
				return nil, err
			}
			items = nested
		}
		s := ArrayOf(items)
		s.typ = t
		return s, nil
	}

	if t != TypeObject && t != TypeAny {
		if hasProps || hasRequired {
			return nil, &DefinitionError{Path: display(path), Reason: fmt.Sprintf("properties declared on %s type", t)}
		}
		return OfType(t)
	}

	var opts []Option
	if req, ok := doc.Get("required"); ok && req.Kind() == jsonvalue.Array {
		for _, r := range req.Items() {
			name, isStr := r.Str()
			if !isStr {
				return nil, &DefinitionError{Path: display(path), Reason: "required entries must be strings"}
			}
			opts = append(opts, Required(name))
		}
	}
	if props, ok := doc.Get("properties"); ok && props.Kind() == jsonvalue.Object {
		for _, m := range props.Members() {
			if m.Value.Kind() != jsonvalue.Object {
				return nil, &DefinitionError{Path: join(path, m.Key), Reason: "property schema must be an object"}
			}
			nested, err := fromDocument(join(path, m.Key), m.Value)
			if err != nil {
				return nil, err
			}
			opts = append(opts, PropertySchema(m.Key, nested))
		}
	}
	if ap, ok := doc.Get("additionalProperties"); ok {
		if b, isBool := ap.Bool(); isBool {
			opts = append(opts, AdditionalProperties(b))
		}
	}

	s, err := Object(opts...)
	if err != nil {
		return nil, err
	}
	s.typ = t
	return s, nil
}
