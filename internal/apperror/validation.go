package apperror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	errRequired       = errors.New("is required")
	errInvalidChoice  = errors.New("is not an allowed value")
	errInvalidTime    = errors.New("must be a valid time in HH:MM format")
	errInvalidURL     = errors.New("must be a valid URL")
	errContactTooLong = errors.New("cannot exceed 10 characters")
)

// customErrors overrides the generated message for specific struct fields
var customErrors = map[string]error{
	"CreateNoticeRequest.Contact.max":         errContactTooLong,
	"UpdateNoticeRequest.Contact.max":         errContactTooLong,
	"CreateMeetupRequest.StartTime.hhmm":      errInvalidTime,
	"CreateMeetupRequest.EndTime.hhmm":        errInvalidTime,
	"UpdateMeetupRequest.StartTime.hhmm":      errInvalidTime,
	"UpdateMeetupRequest.EndTime.hhmm":        errInvalidTime,
	"CreateMeetupRequest.VirtualLink.url":     errInvalidURL,
	"CreateAdvertRequest.Website.url":         errInvalidURL,
	"CreateAdvertRequest.DetailedWebsite.url": errInvalidURL,
}

// FromValidation converts validator errors into a validation *Error with
// one message per failing field. Any other error is returned as a generic
// validation error.
func FromValidation(err error) *Error {
	appErr := Validation(CodeValidation, "Validation failed")

	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		appErr.Err = err
		return appErr
	}

	appErr.Fields = make([]map[string]string, 0, len(validationErr))
	for _, e := range validationErr {
		key := e.StructNamespace() + "." + e.Tag()

		errMsg := messageFor(e)
		if v, ok := customErrors[key]; ok {
			errMsg = v.Error()
		}

		appErr.Fields = append(appErr.Fields, map[string]string{e.Field(): errMsg})
	}
	return appErr
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if", "required_without":
		return errRequired.Error()
	case "oneof":
		return errInvalidChoice.Error()
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters long", e.Param())
		}
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("must contain at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters long", e.Param())
		}
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("must contain at most %s items", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "url":
		return errInvalidURL.Error()
	case "hhmm":
		return errInvalidTime.Error()
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
