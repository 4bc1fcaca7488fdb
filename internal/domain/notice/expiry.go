package notice

import (
	"slices"
	"time"

	"neighborly/internal/apperror"
)

// Hours returns the lifetime of d in hours. Permanent reports ok=true with
// zero hours; unknown keys report ok=false.
func (d Duration) Hours() (int, bool) {
	if d == DurationPermanent {
		return 0, true
	}
	h, ok := durationHours[d]
	return h, ok
}

// Valid reports whether d is one of the accepted durations
func (d Duration) Valid() bool {
	return slices.Contains(Durations, d)
}

// ResolveExpiry computes expiresAt for a notice created at now. Permanent
// notices have no expiry and yield nil.
func ResolveExpiry(d Duration, now time.Time) (*time.Time, error) {
	if d == DurationPermanent {
		return nil, nil
	}
	hours, ok := durationHours[d]
	if !ok {
		return nil, apperror.Validation(apperror.CodeInvalidDuration, "Duration must be one of the valid options")
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	return &expiresAt, nil
}

// WindowStart returns the first instant of now's calendar month in loc
func WindowStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// Validate checks the cross-field rules of a notice
func Validate(n *Notice) error {
	if !slices.Contains(Categories, n.Category) {
		return invalid("category", "Category must be one of the valid options")
	}
	if !n.Duration.Valid() {
		return apperror.Validation(apperror.CodeInvalidDuration, "Duration must be one of the valid options")
	}
	if n.Urgent && n.IsPermanent() {
		return apperror.Validation(apperror.CodeUrgentPermanent, "Urgent notices are not allowed for permanent duration")
	}
	if n.Radius < MinRadius || n.Radius > MaxRadius {
		return invalid("radius", "Radius must be between 1km and 50km")
	}
	return nil
}

func invalid(field, msg string) *apperror.Error {
	err := apperror.Validation(apperror.CodeValidation, "Validation failed")
	err.Fields = []map[string]string{{field: msg}}
	return err
}
