package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Param declares one local or instance parameter. When Value is present it
// is used as-is; otherwise Expression is evaluated against the enclosing
// context at walk time.
type Param struct {
	Name       string `json:"name" yaml:"name"`
	Value      any    `json:"value" yaml:"value"`
	Expression string `json:"expression" yaml:"expression"`
}

// ParamList is an ordered parameter declaration list. Order matters: later
// parameters may reference earlier ones in the same list, so declaration
// order must survive decoding. Two disk forms are accepted: an explicit
// array of {name, value|expression} objects, and a shorthand object whose
// member order is preserved by token-level decoding (string members are
// treated as expressions, everything else as literal values).
type ParamList []*Param

// UnmarshalJSON decodes either disk form while preserving declaration order.
func (pl *ParamList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*pl = nil
		return nil
	}

	if trimmed[0] == '[' {
		var params []*Param
		if err := json.Unmarshal(data, &params); err != nil {
			return err
		}
		*pl = params
		return nil
	}

	if trimmed[0] != '{' {
		return fmt.Errorf("parameters must be an object or array, got %s", string(trimmed[:1]))
	}

	// Object shorthand: walk tokens so member order is kept.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	var params []*Param
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected parameter key token %v", keyTok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		params = append(params, paramFromShorthand(name, normalizeJSONValue(raw)))
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return err
	}
	*pl = params
	return nil
}

// UnmarshalYAML decodes either disk form; yaml.v3 mapping nodes keep member
// order in Content, so the shorthand form stays ordered here too.
func (pl *ParamList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var params []*Param
		if err := node.Decode(&params); err != nil {
			return err
		}
		*pl = params
		return nil
	case yaml.MappingNode:
		var params []*Param
		for i := 0; i+1 < len(node.Content); i += 2 {
			var name string
			if err := node.Content[i].Decode(&name); err != nil {
				return err
			}
			var raw any
			if err := node.Content[i+1].Decode(&raw); err != nil {
				return err
			}
			params = append(params, paramFromShorthand(name, raw))
		}
		*pl = params
		return nil
	case 0:
		*pl = nil
		return nil
	}
	return fmt.Errorf("parameters must be a mapping or sequence, got yaml kind %d", node.Kind)
}

// paramFromShorthand maps an object-form member onto a Param. Strings are
// expressions in the mini-language; anything else is a literal value.
func paramFromShorthand(name string, raw any) *Param {
	if s, ok := raw.(string); ok {
		return &Param{Name: name, Expression: s}
	}
	return &Param{Name: name, Value: raw}
}

// normalizeJSONValue rewrites json.Number values (from UseNumber decoding)
// into float64 so downstream code sees one numeric type.
func normalizeJSONValue(v any) any {
	switch tv := v.(type) {
	case json.Number:
		f, err := tv.Float64()
		if err != nil {
			return tv.String()
		}
		return f
	case []any:
		for i, item := range tv {
			tv[i] = normalizeJSONValue(item)
		}
		return tv
	case map[string]any:
		for k, item := range tv {
			tv[k] = normalizeJSONValue(item)
		}
		return tv
	}
	return v
}
