package usecases

import (
	"fmt"
)

// WizardStep names the subset of form fields one step owns
type WizardStep struct {
	Name   string
	Fields []string
}

// WizardState is the full state of an in-progress wizard session. It is a
// plain value passed through the update functions; the wizard itself holds
// no authoritative data.
type WizardState struct {
	CurrentStep int
	Values      map[string]interface{}
	Errors      FieldErrors
}

// FormWizard gates step progression on per-step validity
type FormWizard struct {
	steps     []WizardStep
	validator *FormValidator
}

// NewFormWizard creates a wizard over an ordered step list
func NewFormWizard(steps []WizardStep, validator *FormValidator) (*FormWizard, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("wizard needs at least one step")
	}
	if validator == nil {
		return nil, fmt.Errorf("wizard needs a compiled validator")
	}
	return &FormWizard{steps: steps, validator: validator}, nil
}

// StepCount returns the number of steps
func (w *FormWizard) StepCount() int {
	return len(w.steps)
}

// StepErrors validates only the fields owned by the given step
func (w *FormWizard) StepErrors(state WizardState, stepIndex int) FieldErrors {
	if stepIndex < 0 || stepIndex >= len(w.steps) {
		return FieldErrors{}
	}
	return w.validator.ValidateFields(state.Values, w.steps[stepIndex].Fields)
}

// CanAdvance reports whether every field owned by the given step is valid
func (w *FormWizard) CanAdvance(state WizardState, stepIndex int) bool {
	return len(w.StepErrors(state, stepIndex)) == 0
}

// Advance moves forward one step, clamped to the last step, and only when
// the current step validates. On failure the returned state carries the
// per-field errors and stays on the current step.
func (w *FormWizard) Advance(state WizardState) WizardState {
	errs := w.StepErrors(state, state.CurrentStep)
	if len(errs) > 0 {
		state.Errors = errs
		return state
	}
	state.Errors = nil
	if state.CurrentStep < len(w.steps)-1 {
		state.CurrentStep++
	}
	return state
}

// Retreat moves back one step, clamped to the first. Going back never
// re-validates.
func (w *FormWizard) Retreat(state WizardState) WizardState {
	state.Errors = nil
	if state.CurrentStep > 0 {
		state.CurrentStep--
	}
	return state
}

// Progress returns completion as a fraction of steps entered
func (w *FormWizard) Progress(state WizardState) float64 {
	return float64(state.CurrentStep+1) / float64(len(w.steps))
}

// DefaultWizardSteps groups the base fields and a market's custom fields
// into the step layout the form client renders.
func DefaultWizardSteps(validator *FormValidator) []WizardStep {
	base := map[string]bool{}
	for _, name := range []string{"businessName", "businessDescription", "experience"} {
		base[name] = true
	}
	contact := map[string]bool{}
	for _, name := range []string{"contactEmail", "contactPhone", "website"} {
		contact[name] = true
	}

	var custom []string
	for _, spec := range validator.Specs() {
		if !base[spec.Name] && !contact[spec.Name] {
			custom = append(custom, spec.Name)
		}
	}

	steps := []WizardStep{
		{Name: "Basic Information", Fields: []string{"businessName", "businessDescription", "experience"}},
		{Name: "Contact Information", Fields: []string{"contactEmail", "contactPhone", "website"}},
	}
	if len(custom) > 0 {
		steps = append(steps, WizardStep{Name: "Additional Information", Fields: custom})
	}
	return steps
}
