package dialog

import (
	"slices"
	"time"

	"github.com/chatassist/dialog-manager/pkg/record"
)

// Env carries the clock and timezone the manager was configured with into
// validators and commit builders, so flows never read the wall clock
// themselves.
type Env struct {
	Now      time.Time
	Location *time.Location
}

// Step is one question of a wizard.
type Step struct {
	State  State
	Prompt string
	// Field is the draft key the validated answer is stored under.
	Field string
	// Optional steps accept ControlSkip, which stores an explicit absence.
	Optional bool
	// Validate turns raw input into a typed Value or rejects it with a
	// *ValidationError. It may read the draft for branch-dependent checks
	// but never mutates it.
	Validate func(in Input, d Draft, env Env) (Value, error)
	// Next picks the following state. It runs after the answer has been
	// stored, so branches can depend on it. A nil Next advances to the
	// flow's declared order; StateDone ends the wizard.
	Next func(d Draft) State
}

// Flow is a complete wizard description for one record kind.
type Flow struct {
	Kind record.Kind
	// Order lists the steps in their default sequence. Entry is Order[0];
	// a step without Next advances to its successor in Order, the last one
	// to StateDone.
	Order []Step
	// Commit folds a finished draft into persistence-ready fields.
	// Explicitly skipped answers are omitted unless the flow supplies a
	// default.
	Commit func(d Draft, env Env) record.Fields
	// Editable maps user-facing field names to the step that revalidates
	// them in edit mode.
	Editable map[string]State
	// Patch builds a single-field update for edit mode.
	Patch func(field string, v Value) (record.Patch, error)

	steps map[State]Step
}

func (f *Flow) Entry() State {
	return f.Order[0].State
}

// Step looks up a step by state.
func (f *Flow) Step(state State) (Step, bool) {
	if f.steps == nil {
		f.steps = make(map[State]Step, len(f.Order))
		for _, s := range f.Order {
			f.steps[s.State] = s
		}
	}
	s, ok := f.steps[state]
	return s, ok
}

// next resolves the state following step once its answer is in the draft.
func (f *Flow) next(step Step, d Draft) State {
	if step.Next != nil {
		return step.Next(d)
	}
	for i, s := range f.Order {
		if s.State == step.State {
			if i == len(f.Order)-1 {
				return StateDone
			}
			return f.Order[i+1].State
		}
	}
	return StateDone
}

// EditableFields lists the field names edit mode accepts, sorted for stable
// prompts.
func (f *Flow) EditableFields() []string {
	names := make([]string, 0, len(f.Editable))
	for name := range f.Editable {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
