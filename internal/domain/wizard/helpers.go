package wizard

import (
	stderrors "errors"

	"github.com/doulacrm/backend/pkg/errors"
)

// ErrNotOnReview is returned when Submit is called before reaching review
var ErrNotOnReview = stderrors.New("wizard: submit is only valid on the review step")

// splitValidationError maps a ValidationError onto the (input, message) pair
// used by StepErrors. Non-validation errors land under a generic key.
func splitValidationError(err error) (string, string) {
	var v *errors.ValidationError
	if stderrors.As(err, &v) {
		field := v.Field
		if field == "" {
			field = "form"
		}
		return field, v.Message
	}
	return "form", err.Error()
}
