package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("join meetup: %w", ErrMeetupFull)

	assert.True(t, errors.Is(wrapped, ErrMeetupFull))
	assert.False(t, errors.Is(wrapped, ErrAlreadyJoined))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, CodeMeetupFull, CodeOf(wrapped))
}

func TestForeignErrorIsInternal(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, CodeInternal, CodeOf(err))

	appErr := Internal(err)
	assert.ErrorIs(t, appErr, err)
	assert.Contains(t, appErr.Error(), "connection reset")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "authorization", KindAuthorization.String())
	assert.Equal(t, "internal", KindInternal.String())
}

type CreateNoticeRequest struct {
	Title   string `validate:"required,min=3,max=100"`
	Contact string `validate:"max=10"`
	Radius  int    `validate:"gte=1,lte=50"`
}

func TestFromValidation(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(CreateNoticeRequest{Title: "ab", Contact: "12345678901", Radius: 0})
	require.Error(t, err)

	appErr := FromValidation(err)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, CodeValidation, appErr.Code)
	assert.ElementsMatch(t, []map[string]string{
		{"Title": "must be at least 3 characters long"},
		{"Contact": "cannot exceed 10 characters"},
		{"Radius": "must be greater than or equal to 1"},
	}, appErr.Fields)
}

func TestFromValidation_NonValidatorError(t *testing.T) {
	appErr := FromValidation(errors.New("unexpected EOF"))

	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Empty(t, appErr.Fields)
	assert.EqualError(t, errors.Unwrap(appErr), "unexpected EOF")
}
