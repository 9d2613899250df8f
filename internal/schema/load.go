package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a schema document from disk, choosing the decoder by
// file extension (.json, .yaml, .yml), and normalizes it into the internal
// action representation.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Parse(data, FormatYAML)
	default:
		return Parse(data, FormatJSON)
	}
}

// Format selects the on-disk encoding of a schema document.
type Format int

const (
	// FormatJSON decodes the document with encoding/json.
	FormatJSON Format = iota
	// FormatYAML decodes the document with yaml.v3.
	FormatYAML
)

// Parse decodes a schema document from raw bytes and normalizes it.
func Parse(data []byte, format Format) (*Document, error) {
	doc := &Document{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	default:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}
	if err := doc.Normalize(); err != nil {
		return nil, err
	}
	return doc, nil
}
