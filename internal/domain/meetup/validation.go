package meetup

import (
	"fmt"
	"slices"
	"time"

	"neighborly/internal/apperror"
)

const (
	MinVisibilityRadius = 1
	MaxVisibilityRadius = 50
	MinAttendees        = 2
	MaxAttendeesLimit   = 1000
	MaxTags             = 10
	MaxTagLength        = 30
)

// Validate checks the cross-field rules of a meetup draft. It runs on create
// and again on update after the patch is applied.
func Validate(m *Meetup, now time.Time) error {
	if p, ok := m.Coordinates(); ok && !p.Valid() {
		return apperror.ErrInvalidCoordinates
	}

	if !slices.Contains(Categories, m.Category) {
		return invalid("category", "is not an allowed value")
	}

	switch m.Type {
	case TypeFree, TypePaid, TypeInviteOnly:
	default:
		return invalid("type", "is not an allowed value")
	}

	switch m.Format {
	case FormatPhysical:
		if m.MeetupLocation == "" && (m.Location == nil || (m.Location.Address == "" && m.Location.Coordinates == nil)) {
			return invalid("location", "is required for physical meetups")
		}
	case FormatVirtual:
		if m.VirtualLink == "" {
			return invalid("virtualLink", "is required for virtual meetups")
		}
	default:
		return invalid("meetupFormat", "is not an allowed value")
	}

	if m.VisibilityRadius < MinVisibilityRadius || m.VisibilityRadius > MaxVisibilityRadius {
		return invalid("visibilityRadius", fmt.Sprintf("must be between %d and %d", MinVisibilityRadius, MaxVisibilityRadius))
	}

	if err := validateSchedule(m, now); err != nil {
		return err
	}

	if err := ValidateCapacity(m); err != nil {
		return err
	}

	if len(m.Tags) > MaxTags {
		return invalid("tags", fmt.Sprintf("cannot have more than %d tags", MaxTags))
	}
	for _, tag := range m.Tags {
		if len(tag) > MaxTagLength {
			return invalid("tags", fmt.Sprintf("each tag must be at most %d characters", MaxTagLength))
		}
	}

	return nil
}

// ValidateCapacity checks the attendee cap and gender sub-caps
func ValidateCapacity(m *Meetup) error {
	if !m.HasNoLimit && (m.MaxAttendees < MinAttendees || m.MaxAttendees > MaxAttendeesLimit) {
		return invalid("maxAttendees", fmt.Sprintf("must be between %d and %d", MinAttendees, MaxAttendeesLimit))
	}

	if !m.GenderSpecific {
		return nil
	}

	if m.MaxMale < 0 || m.MaxFemale < 0 || m.MaxTransgender < 0 {
		return apperror.Validation(apperror.CodeGenderCapsInvalid, "Gender limits cannot be negative")
	}
	if m.MaxMale == 0 && m.MaxFemale == 0 && m.MaxTransgender == 0 {
		return apperror.Validation(apperror.CodeGenderCapsInvalid, "At least one gender limit must be set for gender-specific meetups")
	}
	if !m.HasNoLimit && m.MaxMale+m.MaxFemale+m.MaxTransgender > m.MaxAttendees {
		return apperror.Validation(apperror.CodeGenderCapsInvalid, "Total of gender limits cannot exceed max attendees")
	}

	return nil
}

func validateSchedule(m *Meetup, now time.Time) error {
	start, err := time.Parse("15:04", m.StartTime)
	if err != nil {
		return invalid("startTime", "must be a valid time in HH:MM format")
	}
	end, err := time.Parse("15:04", m.EndTime)
	if err != nil {
		return invalid("endTime", "must be a valid time in HH:MM format")
	}
	if !end.After(start) {
		return invalid("endTime", "must be after start time")
	}

	if m.Date.IsZero() {
		return invalid("date", "is required")
	}
	y, mo, d := now.UTC().Date()
	today := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	if m.Date.UTC().Before(today) {
		return invalid("date", "must be in the future")
	}

	return nil
}

func invalid(field, msg string) *apperror.Error {
	err := apperror.Validation(apperror.CodeValidation, "Validation failed")
	err.Fields = []map[string]string{{field: msg}}
	return err
}
