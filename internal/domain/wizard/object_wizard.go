package wizard

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/doulacrm/backend/pkg/apiname"
	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/fieldtypes"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ObjectDraft is the in-progress object definition assembled across the
// wizard steps, including its initial custom fields.
type ObjectDraft struct {
	Label        string                 `json:"label"`
	PluralLabel  string                 `json:"plural_label"`
	APIName      string                 `json:"api_name"`
	Description  string                 `json:"description,omitempty"`
	SharingModel constants.SharingModel `json:"sharing_model"`

	HasActivities  bool `json:"has_activities"`
	HasNotes       bool `json:"has_notes"`
	HasAttachments bool `json:"has_attachments"`
	HasRecordTypes bool `json:"has_record_types"`

	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`

	Fields []FieldDraft `json:"fields,omitempty"`
}

// ObjectWizard drives the basic_info → features → appearance → fields →
// review workflow for a new custom object. existingNames carries the object
// api names already taken in the organization.
type ObjectWizard struct {
	machine       *Machine
	draft         ObjectDraft
	existingNames map[string]bool
	submitErr     error
}

// NewObjectWizard starts an object-creation workflow scoped to an
// organization whose objects currently carry the given api names.
func NewObjectWizard(existingObjectNames []string) *ObjectWizard {
	names := make(map[string]bool, len(existingObjectNames))
	for _, n := range existingObjectNames {
		names[strings.ToLower(n)] = true
	}
	return &ObjectWizard{
		machine:       NewMachine(StepBasicInfo, StepFeatures, StepAppearance, StepFields, StepReview),
		existingNames: names,
	}
}

// Step returns the currently active step
func (w *ObjectWizard) Step() Step {
	return w.machine.Current()
}

// Draft returns a copy of the current draft
func (w *ObjectWizard) Draft() ObjectDraft {
	return w.draft
}

// SetDraft replaces the draft with caller-edited state. Blank plural labels
// and api names are derived from the label.
func (w *ObjectWizard) SetDraft(d ObjectDraft) {
	if d.PluralLabel == "" && d.Label != "" {
		d.PluralLabel = apiname.Pluralize(d.Label)
	}
	if d.APIName == "" && d.Label != "" {
		d.APIName = apiname.Generate(d.Label)
	}
	w.draft = d
}

// SubmitError returns the terminal error of the last failed submit, if any
func (w *ObjectWizard) SubmitError() error {
	return w.submitErr
}

// ValidateStep validates the current step's inputs against the draft
func (w *ObjectWizard) ValidateStep() StepErrors {
	return w.validate(w.machine.Current())
}

func (w *ObjectWizard) validate(step Step) StepErrors {
	errs := StepErrors{}

	switch step {
	case StepBasicInfo:
		if strings.TrimSpace(w.draft.Label) == "" {
			errs["label"] = "label is required"
		}
		if strings.TrimSpace(w.draft.PluralLabel) == "" {
			errs["plural_label"] = "plural label is required"
		}
		name := w.draft.APIName
		if name == "" {
			errs["api_name"] = "api name is required"
		} else if err := apiname.Validate(name); err != nil {
			errs["api_name"] = "api name must start with a letter and contain only letters, digits and underscores"
		} else if w.existingNames[strings.ToLower(apiname.WithCustomSuffix(name))] {
			errs["api_name"] = "an object with this api name already exists"
		}
		if w.draft.SharingModel != "" && !constants.IsValidSharingModel(w.draft.SharingModel) {
			errs["sharing_model"] = "unknown sharing model"
		}

	case StepFeatures:
		// Feature toggles cannot be invalid on their own.

	case StepAppearance:
		if w.draft.Color != "" && !hexColor.MatchString(w.draft.Color) {
			errs["color"] = "color must be a hex value like #7c3aed"
		}

	case StepFields:
		seen := map[string]bool{}
		registry := fieldtypes.GetRegistry()
		for i, f := range w.draft.Fields {
			key := fmt.Sprintf("fields[%d]", i)
			if strings.TrimSpace(f.Label) == "" {
				errs[key+".label"] = "label is required"
				continue
			}
			name := f.APIName
			if name == "" {
				name = apiname.Generate(f.Label)
			}
			if err := apiname.Validate(name); err != nil {
				errs[key+".api_name"] = "invalid api name"
				continue
			}
			suffixed := strings.ToLower(apiname.WithCustomSuffix(name))
			if seen[suffixed] {
				errs[key+".api_name"] = "duplicate api name within this object"
				continue
			}
			seen[suffixed] = true
			if err := registry.ValidateConfig(f.DataType, f.Config, f.PicklistValues); err != nil {
				field, msg := splitValidationError(err)
				errs[key+"."+field] = msg
			}
		}

	case StepReview:
		// Review re-displays the assembled draft; no new validation.
	}

	return errs
}

// CanProceed reports whether the current step's validation passes
func (w *ObjectWizard) CanProceed() bool {
	return !w.ValidateStep().HasErrors()
}

// Next advances to the following step when the current step validates.
// It returns the blocking error set otherwise.
func (w *ObjectWizard) Next() (StepErrors, error) {
	if errs := w.ValidateStep(); errs.HasErrors() {
		return errs, nil
	}
	return nil, w.machine.Advance()
}

// Back returns to the previous step; draft state is preserved
func (w *ObjectWizard) Back() error {
	return w.machine.Retreat()
}

// Cancel discards all draft state, leaving nothing persisted
func (w *ObjectWizard) Cancel() {
	w.draft = ObjectDraft{}
	w.submitErr = nil
	w.machine.Reset()
}

// Submit runs the atomic create on the review step. A failed submit keeps the
// draft and the wizard position so the user can retry from review.
func (w *ObjectWizard) Submit(ctx context.Context, create func(context.Context, ObjectDraft) error) error {
	if w.machine.Current() != StepReview {
		return ErrNotOnReview
	}
	if err := create(ctx, w.draft); err != nil {
		w.submitErr = err
		return err
	}
	w.submitErr = nil
	return nil
}
