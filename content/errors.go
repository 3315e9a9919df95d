package content

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrNotFound is returned when no content file exists for a slug.
	ErrNotFound = errors.New("post not found")
	// ErrPostExists is returned by Create when the slug is already taken.
	ErrPostExists = errors.New("post already exists")
	// ErrTitleMismatch is returned by Delete when the confirmation title
	// does not equal the stored title.
	ErrTitleMismatch = errors.New("title does not match, post not deleted")
	// ErrIndex marks a failure to update the content index.
	ErrIndex = errors.New("content index update failed")
)

const (
	postValidationCode = "POST_VALIDATION_FAILED"
	slugValidationCode = "SLUG_VALIDATION_FAILED"

	invalidSlugMessage = "may only contain lowercase letters, digits and hyphens"
)

// IsValidation reports whether err was raised by input validation.
func IsValidation(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

func validatePost(p Post) error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Slug, validation.Required, validation.Match(slugPattern).Error(invalidSlugMessage)),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.Date, validation.Required),
		validation.Field(&p.ReadTime, validation.Required),
		validation.Field(&p.Content, validation.Required),
	)
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid post: "+err.Error()).
		WithTextCode(postValidationCode)
}

func validateSlug(slug string) error {
	err := validation.Validate(slug, validation.Required, validation.Match(slugPattern).Error(invalidSlugMessage))
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "slug: "+err.Error()).
		WithTextCode(slugValidationCode)
}
