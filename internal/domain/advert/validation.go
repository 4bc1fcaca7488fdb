package advert

import (
	"slices"

	"neighborly/internal/apperror"
)

// Validate checks the rules that request tags cannot express
func Validate(a *Advertisement) error {
	if a.Category != "" && !slices.Contains(Categories, a.Category) {
		return invalid("category", "Category must be one of the valid options")
	}
	if len(a.UploadedFiles) > MaxUploadedFiles {
		return invalid("uploadedFiles", "Cannot upload more than 5 files")
	}
	if len(UniqueLocalities(a.Localities)) == 0 {
		return invalid("localities", "At least one locality is required")
	}
	return ValidateDuration(a.Duration)
}

func invalid(field, msg string) *apperror.Error {
	err := apperror.Validation(apperror.CodeValidation, "Validation failed")
	err.Fields = []map[string]string{{field: msg}}
	return err
}
