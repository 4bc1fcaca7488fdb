package meetup

import "neighborly/internal/apperror"

var (
	ErrAlreadyJoined = apperror.ErrAlreadyJoined
	ErrMeetupFull    = apperror.ErrMeetupFull
	ErrNotJoined     = apperror.ErrNotJoined
	ErrNotFound      = apperror.ErrMeetupNotFound

	// ErrCapacityBelowAttendees rejects lowering maxAttendees under the
	// number of people already attending
	ErrCapacityBelowAttendees = apperror.Conflict(apperror.CodeMeetupFull, "Max attendees cannot be below the current attendee count")
)
