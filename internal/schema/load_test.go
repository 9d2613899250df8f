package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_JSONDocument(t *testing.T) {
	data := []byte(`{
		"version": 4,
		"materials": {"steel": {"color": "#888888", "opacity": 1}},
		"globalParameters": {"height": {"value": 10, "min": 1, "max": 100}},
		"context": {"segments": 12},
		"actions": [
			{"type": "group", "id": "root", "children": [
				{"type": "helper", "id": "core", "helper": "box",
				 "params": {"width": "$height / 2", "depth": 3}}
			]}
		]
	}`)

	doc, err := Parse(data, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 4.0, doc.Version)
	require.Contains(t, doc.Materials, "steel")
	assert.Equal(t, "#888888", doc.Materials["steel"].Color)
	require.Contains(t, doc.GlobalParameters, "height")
	assert.Equal(t, 10.0, doc.GlobalParameters["height"].Value)

	require.Len(t, doc.Actions, 1)
	root := doc.Actions[0]
	assert.Equal(t, "group", root.Type)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "box", root.Children[0].Helper)
}

func TestParse_YAMLDocument(t *testing.T) {
	data := []byte(`
version: 4
actions:
  - type: repeat
    id: ring
    count: 6
    distribution:
      type: radial
      params:
        radius: 4
    children:
      - type: helper
        id: spoke
        helper: box
`)
	doc, err := Parse(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, doc.Actions, 1)
	assert.Equal(t, "repeat", doc.Actions[0].Type)
	require.NotNil(t, doc.Actions[0].Distribution)
	assert.Equal(t, "radial", doc.Actions[0].Distribution.Type)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"version": `), FormatJSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestParamList_OrderPreserved(t *testing.T) {
	t.Run("json object shorthand", func(t *testing.T) {
		data := []byte(`{
			"version": 4,
			"actions": [{"type": "group", "id": "g",
				"parameters": {"zz": 1, "aa": "$zz * 2", "mm": 3}}]
		}`)
		doc, err := Parse(data, FormatJSON)
		require.NoError(t, err)
		params := doc.Actions[0].Parameters
		require.Len(t, params, 3)
		assert.Equal(t, "zz", params[0].Name)
		assert.Equal(t, "aa", params[1].Name)
		assert.Equal(t, "mm", params[2].Name)
		assert.Equal(t, 1.0, params[0].Value)
		assert.Equal(t, "$zz * 2", params[1].Expression)
	})

	t.Run("json array form", func(t *testing.T) {
		data := []byte(`{
			"version": 4,
			"actions": [{"type": "group", "id": "g",
				"parameters": [
					{"name": "b", "value": 2},
					{"name": "a", "expression": "$b + 1"}
				]}]
		}`)
		doc, err := Parse(data, FormatJSON)
		require.NoError(t, err)
		params := doc.Actions[0].Parameters
		require.Len(t, params, 2)
		assert.Equal(t, "b", params[0].Name)
		assert.Equal(t, "a", params[1].Name)
	})

	t.Run("yaml mapping shorthand", func(t *testing.T) {
		data := []byte(`
version: 4
actions:
  - type: group
    id: g
    parameters:
      zz: 1
      aa: $zz * 2
`)
		doc, err := Parse(data, FormatYAML)
		require.NoError(t, err)
		params := doc.Actions[0].Parameters
		require.Len(t, params, 2)
		assert.Equal(t, "zz", params[0].Name)
		assert.Equal(t, "aa", params[1].Name)
		assert.Equal(t, "$zz * 2", params[1].Expression)
	})
}
