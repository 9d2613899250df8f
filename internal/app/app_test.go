package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigRequiresSchemaPath(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	cfg, err := NewConfig(Config{SchemaPath: "scene.json"})
	require.NoError(t, err)
	assert.Equal(t, "scene.json", cfg.SchemaPath)
}

func TestParseOverrides(t *testing.T) {
	out, err := parseOverrides([]string{"count=5", "label=tall"})
	require.NoError(t, err)
	assert.Equal(t, float64(5), out["count"])
	assert.Equal(t, "tall", out["label"])

	_, err = parseOverrides([]string{"nonsense"})
	assert.Error(t, err)
	_, err = parseOverrides([]string{"=5"})
	assert.Error(t, err)
}

func TestAppRunAppliesOverrides(t *testing.T) {
	schemaPath := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{
		"version": 4,
		"globalParameters": {"count": {"value": 2}},
		"actions": [
			{"type": "repeat", "id": "r", "count": "$count", "children": [
				{"type": "helper", "id": "b", "helper": "box", "params": {}}
			]}
		]
	}`), 0600))

	out := &bytes.Buffer{}
	cfg, err := NewConfig(Config{
		SchemaPath: schemaPath,
		LogLevel:   "error",
		Overrides:  []string{"count=4"},
	})
	require.NoError(t, err)

	a := NewApp(out, cfg)
	require.NoError(t, a.Run(context.Background(), cfg))

	// 4 instance groups + 4 drawables under them.
	assert.Equal(t, 8, a.Engine().Summary().Paths)
}
