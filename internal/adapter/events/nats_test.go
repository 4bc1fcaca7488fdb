package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"neighborly/internal/domain/event"
)

func TestSubjects(t *testing.T) {
	p := NewPublisher(nil, "", zap.NewNop())

	assert.Equal(t, "neighborly", p.Prefix())
	assert.Equal(t, "neighborly.notice.created", p.Subject(event.Event{Entity: event.EntityNotice, Type: event.TypeCreated}))
	assert.Equal(t, "neighborly.meetup.joined", p.Subject(event.Event{Entity: event.EntityMeetup, Type: event.TypeJoined}))
	assert.Equal(t, "city.meetup.m1.activity", ActivitySubject("city", "m1"))
}
