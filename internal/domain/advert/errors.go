package advert

import "neighborly/internal/apperror"

var (
	ErrNotFound        = apperror.ErrAdvertNotFound
	ErrPaymentRequired = apperror.Conflict(apperror.CodePaymentRequired, "Payment has not succeeded")
	ErrInvalidStatus   = apperror.Conflict(apperror.CodeInvalidStatus, "Advertisement cannot be activated from its current status")
	ErrPaymentMismatch = apperror.Conflict(apperror.CodePaymentMismatch, "Payment amount does not match the advertisement price")
	ErrTargetingLocked = apperror.Conflict(apperror.CodeTargetingLocked, "Localities and duration can only change while the advertisement is a draft")
)
