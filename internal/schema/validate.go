package schema

import "fmt"

// knownActionTypes is the closed set the walker dispatches on. Anything else
// is advisory: the walker warns and skips the node at build time, so unknown
// types surface through Warnings, not Validate.
var knownActionTypes = map[string]struct{}{
	"group":     {},
	"repeat":    {},
	"loop":      {},
	"helper":    {},
	"reference": {},
	"geometry":  {},
	"text":      {},
}

// Validate performs a structural check of a normalized document and returns
// every fatal problem found rather than stopping at the first. An empty
// slice means the document is well formed enough to build; advisory findings
// are reported separately by Warnings.
func (d *Document) Validate() []error {
	var problems []error

	if d.Version < 1 {
		problems = append(problems, fmt.Errorf("version must be a positive number, got %v", d.Version))
	}

	for i, def := range d.Definitions {
		if def.Name == "" {
			problems = append(problems, fmt.Errorf("definitions[%d] has no name", i))
		}
		if def.Body == "" {
			problems = append(problems, fmt.Errorf("definition %q has an empty body", def.Name))
		}
	}

	for name, gp := range d.GlobalParameters {
		if gp == nil {
			problems = append(problems, fmt.Errorf("global parameter %q has no spec", name))
			continue
		}
		if gp.Min != nil && gp.Max != nil && *gp.Min > *gp.Max {
			problems = append(problems, fmt.Errorf("global parameter %q has min %v > max %v", name, *gp.Min, *gp.Max))
		}
	}

	problems = append(problems, validateActions(d.Actions, "")...)
	return problems
}

func validateActions(actions []*Action, where string) []error {
	var problems []error
	seen := map[string]struct{}{}
	for i, a := range actions {
		loc := fmt.Sprintf("%s[%d]", where, i)
		if a == nil {
			problems = append(problems, fmt.Errorf("action %s is null", loc))
			continue
		}
		if a.ID != "" {
			if _, dup := seen[a.ID]; dup {
				problems = append(problems, fmt.Errorf("action %s duplicates sibling id %q", loc, a.ID))
			}
			seen[a.ID] = struct{}{}
		}
		switch a.Type {
		case "repeat":
			if a.Count == nil {
				problems = append(problems, fmt.Errorf("repeat %s has no count", loc))
			}
		case "loop":
			if a.Var == "" {
				problems = append(problems, fmt.Errorf("loop %s has no var", loc))
			}
		case "helper":
			if a.Helper == "" {
				problems = append(problems, fmt.Errorf("helper call %s names no helper", loc))
			}
		case "reference":
			if a.Target == "" {
				problems = append(problems, fmt.Errorf("reference %s has no target", loc))
			}
		}
		for _, p := range a.Parameters {
			if p.Name == "" {
				problems = append(problems, fmt.Errorf("action %s declares a nameless parameter", loc))
			}
		}
		problems = append(problems, validateActions(a.Children, loc+".children")...)
	}
	return problems
}

// Warnings reports advisory findings that never abort a run: the walker
// recovers from each by skipping the offending node and proceeding with its
// siblings. The validate command surfaces them so schema authors see them
// before a build.
func (d *Document) Warnings() []error {
	return warnActions(d.Actions, "")
}

func warnActions(actions []*Action, where string) []error {
	var warnings []error
	for i, a := range actions {
		if a == nil {
			continue
		}
		loc := fmt.Sprintf("%s[%d]", where, i)
		if _, ok := knownActionTypes[a.Type]; !ok {
			warnings = append(warnings, fmt.Errorf("action %s has unknown type %q", loc, a.Type))
		}
		warnings = append(warnings, warnActions(a.Children, loc+".children")...)
	}
	return warnings
}
