package wizard

import (
	"context"
	"strings"

	"github.com/doulacrm/backend/pkg/apiname"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/fieldtypes"
)

// FieldDraft is the in-progress field definition assembled across the wizard
// steps. It lives only in memory for the duration of the workflow.
type FieldDraft struct {
	DataType       constants.FieldDataType `json:"data_type"`
	Label          string                  `json:"label"`
	APIName        string                  `json:"api_name"`
	HelpText       string                  `json:"help_text,omitempty"`
	Description    string                  `json:"description,omitempty"`
	IsRequired     bool                    `json:"is_required"`
	IsUnique       bool                    `json:"is_unique"`
	Config         fieldtypes.Config       `json:"config"`
	PicklistValues []string                `json:"picklist_values,omitempty"`
	DefaultValue   string                  `json:"default_value,omitempty"`
}

// FieldWizard drives the type → details → options → review workflow for a
// single new field. existingNames carries the api names already taken on the
// target object so collisions surface before submit.
type FieldWizard struct {
	machine       *Machine
	draft         FieldDraft
	existingNames map[string]bool
	submitErr     error
}

// NewFieldWizard starts a field-creation workflow against an object whose
// fields currently carry the given api names.
func NewFieldWizard(existingFieldNames []string) *FieldWizard {
	names := make(map[string]bool, len(existingFieldNames))
	for _, n := range existingFieldNames {
		names[strings.ToLower(n)] = true
	}
	return &FieldWizard{
		machine:       NewMachine(StepType, StepDetails, StepOptions, StepReview),
		existingNames: names,
	}
}

// Step returns the currently active step
func (w *FieldWizard) Step() Step {
	return w.machine.Current()
}

// Draft returns a copy of the current draft
func (w *FieldWizard) Draft() FieldDraft {
	return w.draft
}

// SetDraft replaces the draft with caller-edited state
func (w *FieldWizard) SetDraft(d FieldDraft) {
	w.draft = d
}

// SubmitError returns the terminal error of the last failed submit, if any
func (w *FieldWizard) SubmitError() error {
	return w.submitErr
}

// ValidateStep validates the current step's inputs against the draft.
// Calling it twice on unchanged draft state yields the same error set.
func (w *FieldWizard) ValidateStep() StepErrors {
	return w.validate(w.machine.Current())
}

func (w *FieldWizard) validate(step Step) StepErrors {
	errs := StepErrors{}
	registry := fieldtypes.GetRegistry()

	switch step {
	case StepType:
		if w.draft.DataType == "" {
			errs["data_type"] = "choose a field type"
		} else if _, ok := registry.Get(w.draft.DataType); !ok {
			errs["data_type"] = "unknown field type"
		}

	case StepDetails:
		if strings.TrimSpace(w.draft.Label) == "" {
			errs["label"] = "label is required"
		}
		name := w.draft.APIName
		if name == "" {
			name = apiname.Generate(w.draft.Label)
		}
		if name == "" {
			errs["api_name"] = "api name is required"
		} else if err := apiname.Validate(name); err != nil {
			errs["api_name"] = "api name must start with a letter and contain only letters, digits and underscores"
		} else if w.existingNames[strings.ToLower(apiname.WithCustomSuffix(name))] {
			errs["api_name"] = "a field with this api name already exists"
		}

	case StepOptions:
		if w.draft.DataType == "" {
			errs["data_type"] = "choose a field type"
			break
		}
		if err := registry.ValidateConfig(w.draft.DataType, w.draft.Config, w.draft.PicklistValues); err != nil {
			field, msg := splitValidationError(err)
			errs[field] = msg
		}

	case StepReview:
		// Review re-displays the assembled draft; no new validation.
	}

	return errs
}

// CanProceed reports whether the current step's validation passes
func (w *FieldWizard) CanProceed() bool {
	return !w.ValidateStep().HasErrors()
}

// Next advances to the following step when the current step validates.
// It returns the blocking error set otherwise.
func (w *FieldWizard) Next() (StepErrors, error) {
	if errs := w.ValidateStep(); errs.HasErrors() {
		return errs, nil
	}
	return nil, w.machine.Advance()
}

// Back returns to the previous step; draft state is preserved
func (w *FieldWizard) Back() error {
	return w.machine.Retreat()
}

// Cancel discards all draft state, leaving nothing persisted
func (w *FieldWizard) Cancel() {
	w.draft = FieldDraft{}
	w.submitErr = nil
	w.machine.Reset()
}

// Submit runs the atomic create on the review step. A failed submit keeps the
// draft and the wizard position so the user can retry from review.
func (w *FieldWizard) Submit(ctx context.Context, create func(context.Context, FieldDraft) error) error {
	if w.machine.Current() != StepReview {
		return ErrNotOnReview
	}
	// Resolve the derived api name before handing the draft over
	if w.draft.APIName == "" {
		w.draft.APIName = apiname.Generate(w.draft.Label)
	}
	if err := create(ctx, w.draft); err != nil {
		w.submitErr = err
		return err
	}
	w.submitErr = nil
	return nil
}
