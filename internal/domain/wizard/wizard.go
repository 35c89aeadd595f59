// Package wizard implements the multi-step creation workflows for object and
// field definitions as explicit finite-state machines. The machines are
// independent of any transport or UI layer so the validation gating can be
// exercised directly.
package wizard

import (
	"fmt"
)

// Step is a named state of a creation workflow
type Step string

// Field creation steps
const (
	StepType    Step = "type"
	StepDetails Step = "details"
	StepOptions Step = "options"
	StepReview  Step = "review"
)

// Object creation steps
const (
	StepBasicInfo  Step = "basic_info"
	StepFeatures   Step = "features"
	StepAppearance Step = "appearance"
	StepFields     Step = "fields"
)

// StepErrors maps input names to error messages for one step
type StepErrors map[string]string

// HasErrors reports whether any input failed validation
func (e StepErrors) HasErrors() bool {
	return len(e) > 0
}

// Machine walks a fixed linear sequence of steps. Transitions are strictly
// forward/backward; forward movement is gated by the owning wizard's
// step-local validation.
type Machine struct {
	steps []Step
	index int
}

// NewMachine creates a machine positioned on the first step
func NewMachine(steps ...Step) *Machine {
	if len(steps) == 0 {
		panic("wizard: machine requires at least one step")
	}
	return &Machine{steps: steps}
}

// Current returns the active step
func (m *Machine) Current() Step {
	return m.steps[m.index]
}

// Steps returns the full ordered step sequence
func (m *Machine) Steps() []Step {
	out := make([]Step, len(m.steps))
	copy(out, m.steps)
	return out
}

// IsFirst reports whether the machine is on the first step
func (m *Machine) IsFirst() bool {
	return m.index == 0
}

// IsLast reports whether the machine is on the terminal step
func (m *Machine) IsLast() bool {
	return m.index == len(m.steps)-1
}

// Advance moves one step forward. The caller gates this on its own
// step validation; the machine only refuses to run off the end.
func (m *Machine) Advance() error {
	if m.IsLast() {
		return fmt.Errorf("cannot advance past terminal step %s", m.Current())
	}
	m.index++
	return nil
}

// Retreat moves one step backward
func (m *Machine) Retreat() error {
	if m.IsFirst() {
		return fmt.Errorf("cannot retreat before first step %s", m.Current())
	}
	m.index--
	return nil
}

// Reset returns the machine to the first step
func (m *Machine) Reset() {
	m.index = 0
}
