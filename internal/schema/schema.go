package schema

import "errors"

// ErrInvalidDocument is returned when a document cannot be parsed or fails
// structural validation. It is the only error class that aborts a run.
var ErrInvalidDocument = errors.New("invalid schema document")

// Document is the parsed, normalized form of one schema file. It is
// immutable once loaded; the engine never writes back into it.
type Document struct {
	Version          float64                     `json:"version" yaml:"version"`
	Materials        map[string]*Material        `json:"materials" yaml:"materials"`
	GlobalParameters map[string]*GlobalParameter `json:"globalParameters" yaml:"globalParameters"`
	Context          map[string]any              `json:"context" yaml:"context"`
	Definitions      []*Definition               `json:"definitions" yaml:"definitions"`

	// Actions is the v4-style tree. Exactly one of Actions/Template/Procedures
	// is expected on disk; Normalize folds them all into Actions.
	Actions    []*Action    `json:"actions" yaml:"actions"`
	Template   *Action      `json:"template" yaml:"template"`
	Procedures []*Procedure `json:"procedures" yaml:"procedures"`
}

// Material describes a named surface appearance, resolved at
// materialization time and attached to leaf drawables.
type Material struct {
	Color     string  `json:"color" yaml:"color"`
	Opacity   float64 `json:"opacity" yaml:"opacity"`
	Wireframe bool    `json:"wireframe" yaml:"wireframe"`
}

// GlobalParameter is a user-tunable top-level value with optional bounds.
type GlobalParameter struct {
	Value any      `json:"value" yaml:"value"`
	Min   *float64 `json:"min" yaml:"min"`
	Max   *float64 `json:"max" yaml:"max"`
}

// Definition is a schema-provided helper: a named expression macro with an
// explicit, enumerated parameter list. Definitions are compiled once at load
// time into closed callables; they capture nothing beyond their declared
// parameters.
type Definition struct {
	Name       string   `json:"name" yaml:"name"`
	Parameters []string `json:"parameters" yaml:"parameters"`
	Body       string   `json:"body" yaml:"body"`
}

// Action is one node of the normalized action tree. Type selects which of
// the remaining fields are meaningful; unknown types are skipped with a
// warning at walk time, not rejected at load time.
type Action struct {
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id" yaml:"id"`

	// Parameters are this subtree's declared local parameters, resolved
	// left to right against the enclosing context.
	Parameters ParamList `json:"parameters" yaml:"parameters"`

	// Children of group / repeat / loop constructs.
	Children []*Action `json:"children" yaml:"children"`

	// Repeat fields.
	Count              any           `json:"count" yaml:"count"`
	InstanceParameters ParamList     `json:"instance_parameters" yaml:"instance_parameters"`
	Distribution       *Distribution `json:"distribution" yaml:"distribution"`

	// Loop fields.
	Var  string `json:"var" yaml:"var"`
	From any    `json:"from" yaml:"from"`
	To   any    `json:"to" yaml:"to"`

	// Helper-call fields. Params values may themselves be nested helper-call
	// or reference descriptors.
	Helper string         `json:"helper" yaml:"helper"`
	Params map[string]any `json:"params" yaml:"params"`

	// Reference fields.
	Target string `json:"target" yaml:"target"`

	// Legacy leaf geometry fields.
	Shape      string `json:"shape" yaml:"shape"`
	Dimensions []any  `json:"dimensions" yaml:"dimensions"`
	Font       string `json:"font" yaml:"font"`
	Text       string `json:"text" yaml:"text"`

	// Common placement and appearance. Entries are expressions or literals.
	Position []any `json:"position" yaml:"position"`
	Rotation []any `json:"rotation" yaml:"rotation"`
	Scale    []any `json:"scale" yaml:"scale"`
	Material any   `json:"material" yaml:"material"`
}

// Distribution names the strategy that places repeat instances, plus its
// strategy-specific parameters (spacing, radius, and so on).
type Distribution struct {
	Type   string         `json:"type" yaml:"type"`
	Params map[string]any `json:"params" yaml:"params"`
}

// Procedure is the top-level unit of the legacy dialect.
type Procedure struct {
	Name  string        `json:"name" yaml:"name"`
	Steps []*LegacyStep `json:"steps" yaml:"steps"`
}

// LegacyStep mirrors Action but uses the legacy `action` key for its type
// tag and a handful of renamed fields.
type LegacyStep struct {
	Action     string         `json:"action" yaml:"action"`
	ID         string         `json:"id" yaml:"id"`
	Params     map[string]any `json:"params" yaml:"params"`
	Shape      string         `json:"shape" yaml:"shape"`
	Dimensions []any          `json:"dimensions" yaml:"dimensions"`
	Position   []any          `json:"position" yaml:"position"`
	Rotation   []any          `json:"rotation" yaml:"rotation"`
	Material   any            `json:"material" yaml:"material"`
	Target     string         `json:"target" yaml:"target"`
	Count      any            `json:"count" yaml:"count"`
	Steps      []*LegacyStep  `json:"steps" yaml:"steps"`
}
