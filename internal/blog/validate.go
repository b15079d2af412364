package blog

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/apperr"
	"inkwell/internal/slug"
)

var isSlug = validation.NewStringRuleWithError(
	slug.Valid,
	validation.NewError("validation_is_slug", "must be lowercase letters, digits and hyphens"),
)

// validationError turns ozzo field errors into a ValidationError whose
// message lists each offending field. Internal rule errors pass through.
func validationError(err error) error {
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return apperr.Validation("%s", err.Error())
}
