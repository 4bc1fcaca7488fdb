// internal/domain/event/event.go

package event

import (
	"context"
	"time"
)

// Entity names used as the second subject token
const (
	EntityMeetup        = "meetup"
	EntityNotice        = "notice"
	EntityAdvertisement = "advertisement"
	EntityTemplate      = "template"
	EntitySweep         = "sweep"
)

// Event types
const (
	TypeCreated   = "created"
	TypeUpdated   = "updated"
	TypeDeleted   = "deleted"
	TypeJoined    = "joined"
	TypeLeft      = "left"
	TypeActivated = "activated"
	TypeCompleted = "completed"
)

// Event is the JSON envelope published for every domain change
type Event struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"`
	Type       string    `json:"type"`
	EntityID   string    `json:"entityId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// Publisher delivers domain events to subscribers
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, Event) error { return nil }
