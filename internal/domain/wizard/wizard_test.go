package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doulacrm/backend/pkg/constants"
	apperrors "github.com/doulacrm/backend/pkg/errors"
	"github.com/doulacrm/backend/pkg/fieldtypes"
)

func TestMachine_LinearTransitions(t *testing.T) {
	m := NewMachine(StepType, StepDetails, StepOptions, StepReview)

	assert.Equal(t, StepType, m.Current())
	assert.True(t, m.IsFirst())
	assert.Error(t, m.Retreat(), "cannot go back from the first step")

	require.NoError(t, m.Advance())
	require.NoError(t, m.Advance())
	require.NoError(t, m.Advance())
	assert.Equal(t, StepReview, m.Current())
	assert.True(t, m.IsLast())
	assert.Error(t, m.Advance(), "cannot advance past review")

	require.NoError(t, m.Retreat())
	assert.Equal(t, StepOptions, m.Current())
}

func validTextDraft() FieldDraft {
	return FieldDraft{
		DataType: constants.FieldTypeText,
		Label:    "Birth Plan",
		Config:   fieldtypes.Config{Text: &fieldtypes.TextConfig{MaxLength: 255}},
	}
}

func TestFieldWizard_HappyPath(t *testing.T) {
	w := NewFieldWizard([]string{"name", "due_date__c"})
	w.SetDraft(validTextDraft())

	for _, expected := range []Step{StepType, StepDetails, StepOptions} {
		assert.Equal(t, expected, w.Step())
		assert.True(t, w.CanProceed(), "step %s should validate", expected)
		errs, err := w.Next()
		require.NoError(t, err)
		assert.False(t, errs.HasErrors())
	}
	assert.Equal(t, StepReview, w.Step())

	var created FieldDraft
	err := w.Submit(context.Background(), func(_ context.Context, d FieldDraft) error {
		created = d
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "birth_plan", created.APIName, "api name derived from label on submit")
}

func TestFieldWizard_TypeStepBlocksWithoutType(t *testing.T) {
	w := NewFieldWizard(nil)

	assert.False(t, w.CanProceed())
	errs, err := w.Next()
	require.NoError(t, err)
	assert.Contains(t, errs, "data_type")
	assert.Equal(t, StepType, w.Step(), "blocked advancement stays on the step")
}

func TestFieldWizard_PicklistWithoutValuesBlocksOptions(t *testing.T) {
	w := NewFieldWizard(nil)
	w.SetDraft(FieldDraft{
		DataType: constants.FieldTypePicklist,
		Label:    "Visit Type",
	})

	_, err := w.Next() // type -> details
	require.NoError(t, err)
	_, err = w.Next() // details -> options
	require.NoError(t, err)
	assert.Equal(t, StepOptions, w.Step())

	assert.False(t, w.CanProceed(), "picklist with zero values must block advancement to review")
	errs, err := w.Next()
	require.NoError(t, err)
	assert.Contains(t, errs, "values")
	assert.Equal(t, StepOptions, w.Step())

	// Supplying a value unblocks the same step
	d := w.Draft()
	d.PicklistValues = []string{"Prenatal"}
	w.SetDraft(d)
	assert.True(t, w.CanProceed())
}

func TestFieldWizard_ValidateStepIsIdempotent(t *testing.T) {
	w := NewFieldWizard(nil)
	w.SetDraft(FieldDraft{DataType: constants.FieldTypePicklist, Label: "Visit Type"})
	_, _ = w.Next()
	_, _ = w.Next()

	first := w.ValidateStep()
	second := w.ValidateStep()
	assert.Equal(t, first, second, "unchanged draft must yield the same error set")
}

func TestFieldWizard_CollisionAgainstExistingFields(t *testing.T) {
	w := NewFieldWizard([]string{"birth_plan__c"})
	w.SetDraft(validTextDraft())

	_, err := w.Next() // type -> details
	require.NoError(t, err)

	assert.False(t, w.CanProceed())
	errs := w.ValidateStep()
	assert.Contains(t, errs, "api_name")
}

func TestFieldWizard_SubmitOnlyOnReview(t *testing.T) {
	w := NewFieldWizard(nil)
	w.SetDraft(validTextDraft())

	err := w.Submit(context.Background(), func(context.Context, FieldDraft) error { return nil })
	assert.ErrorIs(t, err, ErrNotOnReview)
}

func TestFieldWizard_FailedSubmitKeepsDraft(t *testing.T) {
	w := NewFieldWizard(nil)
	w.SetDraft(validTextDraft())
	for i := 0; i < 3; i++ {
		_, err := w.Next()
		require.NoError(t, err)
	}

	conflict := apperrors.NewConflictError("Field", "api_name", "birth_plan__c")
	err := w.Submit(context.Background(), func(context.Context, FieldDraft) error { return conflict })
	assert.Error(t, err)
	assert.Equal(t, StepReview, w.Step(), "failed submit stays on review")
	assert.Equal(t, "Birth Plan", w.Draft().Label, "draft preserved across a failed submit")
	assert.Equal(t, conflict, w.SubmitError())

	// Retry from review succeeds without re-entering earlier steps
	err = w.Submit(context.Background(), func(context.Context, FieldDraft) error { return nil })
	require.NoError(t, err)
	assert.Nil(t, w.SubmitError())
}

func TestFieldWizard_CancelDiscardsDraft(t *testing.T) {
	w := NewFieldWizard(nil)
	w.SetDraft(validTextDraft())
	_, _ = w.Next()

	w.Cancel()
	assert.Equal(t, StepType, w.Step())
	assert.Equal(t, FieldDraft{}, w.Draft())
}

func TestObjectWizard_HappyPath(t *testing.T) {
	w := NewObjectWizard([]string{"client", "meeting"})
	w.SetDraft(ObjectDraft{
		Label:        "Birth Plan",
		SharingModel: constants.SharingModelPrivate,
		Color:        "#7c3aed",
		Fields: []FieldDraft{
			{DataType: constants.FieldTypeDate, Label: "Due Date"},
			{DataType: constants.FieldTypePicklist, Label: "Status", PicklistValues: []string{"Draft", "Final"}},
		},
	})

	draft := w.Draft()
	assert.Equal(t, "Birth Plans", draft.PluralLabel, "plural label derived from label")
	assert.Equal(t, "birth_plan", draft.APIName, "api name derived from label")

	for _, expected := range []Step{StepBasicInfo, StepFeatures, StepAppearance, StepFields} {
		assert.Equal(t, expected, w.Step())
		errs, err := w.Next()
		require.NoError(t, err)
		assert.False(t, errs.HasErrors(), "step %s blocked: %v", expected, errs)
	}
	assert.Equal(t, StepReview, w.Step())

	err := w.Submit(context.Background(), func(context.Context, ObjectDraft) error { return nil })
	assert.NoError(t, err)
}

func TestObjectWizard_BasicInfoValidation(t *testing.T) {
	w := NewObjectWizard([]string{"birth_plan__c"})

	w.SetDraft(ObjectDraft{})
	errs := w.ValidateStep()
	assert.Contains(t, errs, "label")
	assert.Contains(t, errs, "plural_label")
	assert.Contains(t, errs, "api_name")

	// Collision with an existing custom object
	w.SetDraft(ObjectDraft{Label: "Birth Plan"})
	errs = w.ValidateStep()
	assert.Contains(t, errs, "api_name")
}

func TestObjectWizard_AppearanceRejectsBadColor(t *testing.T) {
	w := NewObjectWizard(nil)
	w.SetDraft(ObjectDraft{Label: "Birth Plan", Color: "purple"})
	_, _ = w.Next() // basic_info -> features
	_, _ = w.Next() // features -> appearance

	assert.Equal(t, StepAppearance, w.Step())
	errs := w.ValidateStep()
	assert.Contains(t, errs, "color")
}

func TestObjectWizard_DuplicateInitialFieldNames(t *testing.T) {
	w := NewObjectWizard(nil)
	w.SetDraft(ObjectDraft{
		Label: "Birth Plan",
		Fields: []FieldDraft{
			{DataType: constants.FieldTypeText, Label: "Notes"},
			{DataType: constants.FieldTypeTextArea, Label: "Notes"},
		},
	})
	for w.Step() != StepFields {
		_, err := w.Next()
		require.NoError(t, err)
	}

	errs := w.ValidateStep()
	assert.Contains(t, errs, "fields[1].api_name")
}

func TestObjectWizard_EmergencyBoxPluralization(t *testing.T) {
	w := NewObjectWizard(nil)
	w.SetDraft(ObjectDraft{Label: "Emergency Box"})
	assert.Equal(t, "Emergency Boxes", w.Draft().PluralLabel)
	assert.Equal(t, "emergency_box", w.Draft().APIName)
}
