package schema

import "fmt"

// Normalize folds whichever dialect the document arrived in into the
// canonical Actions slice. It is idempotent and must run before the action
// tree is walked.
func (d *Document) Normalize() error {
	if d.Version == 0 {
		d.Version = 4
	}

	sources := 0
	if len(d.Actions) > 0 {
		sources++
	}
	if d.Template != nil {
		sources++
	}
	if len(d.Procedures) > 0 {
		sources++
	}
	if sources > 1 {
		return fmt.Errorf("%w: document mixes actions/template/procedures", ErrInvalidDocument)
	}

	switch {
	case d.Template != nil:
		d.Actions = []*Action{d.Template}
		d.Template = nil
	case len(d.Procedures) > 0:
		actions := make([]*Action, 0, len(d.Procedures))
		for _, proc := range d.Procedures {
			actions = append(actions, adaptProcedure(proc))
		}
		d.Actions = actions
		d.Procedures = nil
	}

	if d.Materials == nil {
		d.Materials = map[string]*Material{}
	}
	if d.GlobalParameters == nil {
		d.GlobalParameters = map[string]*GlobalParameter{}
	}
	if d.Context == nil {
		d.Context = map[string]any{}
	}
	return nil
}

// adaptProcedure wraps one legacy procedure into a group action whose
// children are the adapted steps.
func adaptProcedure(proc *Procedure) *Action {
	group := &Action{Type: "group", ID: proc.Name}
	for _, step := range proc.Steps {
		group.Children = append(group.Children, adaptStep(step))
	}
	return group
}

// adaptStep translates a legacy step into the v4 action shape. The legacy
// dialect uses `action` as its type tag and spells a few constructs
// differently; everything maps one-to-one.
func adaptStep(step *LegacyStep) *Action {
	a := &Action{
		ID:         step.ID,
		Target:     step.Target,
		Shape:      step.Shape,
		Dimensions: step.Dimensions,
		Position:   step.Position,
		Rotation:   step.Rotation,
		Material:   step.Material,
		Count:      step.Count,
	}

	switch step.Action {
	case "group", "repeat", "loop", "reference":
		a.Type = step.Action
	case "call", "helper":
		a.Type = "helper"
		a.Helper = step.Shape
		if a.Helper == "" {
			a.Helper = step.ID
		}
		a.Params = step.Params
	case "draw", "geometry", "":
		a.Type = "geometry"
	default:
		// Unknown legacy verbs become helper calls by that name; the walker
		// decides at runtime whether a factory exists.
		a.Type = "helper"
		a.Helper = step.Action
		a.Params = step.Params
	}

	for _, child := range step.Steps {
		a.Children = append(a.Children, adaptStep(child))
	}
	return a
}
