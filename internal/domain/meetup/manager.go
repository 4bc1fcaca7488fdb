// internal/domain/meetup/manager.go

package meetup

import (
	"context"
	"time"

	"neighborly/internal/domain/geo"
	"neighborly/internal/domain/paging"
)

// Filter defines criteria for listing meetups
type Filter struct {
	Category           string
	Type               Type
	Format             Format
	Status             Status
	Creator            string
	Location           string
	VisibilityLocation string
	VisibilityRadius   float64
	Tags               []string
	Search             string

	// Area restricts results to meetups whose coordinates fall within it.
	// Bounds is derived from Area by the manager before hitting the store.
	Area   *geo.Area
	Bounds *geo.Bounds

	Page paging.Request
}

// Patch carries the fields an update may change. Nil means unchanged.
type Patch struct {
	Title                 *string
	Description           *string
	Category              *string
	Type                  *Type
	Format                *Format
	MeetupLocation        *string
	VisibilityLocation    *string
	VisibilityRadius      *float64
	Location              *Location
	VirtualLink           *string
	MeetingCode           *string
	MeetingPassword       *string
	Date                  *time.Time
	StartTime             *string
	EndTime               *string
	MaxAttendees          *int
	HasNoLimit            *bool
	GenderSpecific        *bool
	MaxMale               *int
	MaxFemale             *int
	MaxTransgender        *int
	Tags                  []string
	Image                 *string
	Price                 *float64
	PaymentMethod         *string
	AllowChatContinuation *bool
	Status                *Status
}

// Apply copies the set fields of p onto m
func (p Patch) Apply(m *Meetup) {
	setIf(&m.Title, p.Title)
	setIf(&m.Description, p.Description)
	setIf(&m.Category, p.Category)
	setIf(&m.Type, p.Type)
	setIf(&m.Format, p.Format)
	setIf(&m.MeetupLocation, p.MeetupLocation)
	setIf(&m.VisibilityLocation, p.VisibilityLocation)
	setIf(&m.VisibilityRadius, p.VisibilityRadius)
	setIf(&m.VirtualLink, p.VirtualLink)
	setIf(&m.MeetingCode, p.MeetingCode)
	setIf(&m.MeetingPassword, p.MeetingPassword)
	setIf(&m.Date, p.Date)
	setIf(&m.StartTime, p.StartTime)
	setIf(&m.EndTime, p.EndTime)
	setIf(&m.MaxAttendees, p.MaxAttendees)
	setIf(&m.HasNoLimit, p.HasNoLimit)
	setIf(&m.GenderSpecific, p.GenderSpecific)
	setIf(&m.MaxMale, p.MaxMale)
	setIf(&m.MaxFemale, p.MaxFemale)
	setIf(&m.MaxTransgender, p.MaxTransgender)
	setIf(&m.Image, p.Image)
	setIf(&m.Price, p.Price)
	setIf(&m.PaymentMethod, p.PaymentMethod)
	setIf(&m.AllowChatContinuation, p.AllowChatContinuation)
	setIf(&m.Status, p.Status)
	if p.Location != nil {
		loc := *p.Location
		m.Location = &loc
	}
	if p.Tags != nil {
		m.Tags = p.Tags
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Stats summarizes meetups for the admin dashboard
type Stats struct {
	TotalMeetups  int64 `json:"totalMeetups"`
	RecentMeetups int64 `json:"recentMeetups"`
}

// Manager defines the interface for meetup management
type Manager interface {
	// CreateMeetup persists a new meetup with the creator as first attendee
	CreateMeetup(ctx context.Context, creatorID string, draft Meetup) (*Meetup, error)

	// GetMeetup returns a meetup by ID
	GetMeetup(ctx context.Context, id string) (*Meetup, error)

	// ListMeetups returns meetups matching the filter sorted by date
	ListMeetups(ctx context.Context, filter Filter) (paging.Result[Meetup], error)

	// UpdateMeetup applies a patch; only the creator may update
	UpdateMeetup(ctx context.Context, id, userID string, patch Patch) (*Meetup, error)

	// DeleteMeetup removes a meetup; only the creator may delete
	DeleteMeetup(ctx context.Context, id, userID string) error

	// JoinMeetup adds the user to the attendees
	JoinMeetup(ctx context.Context, id, userID string) (*Meetup, error)

	// LeaveMeetup removes the user from the attendees
	LeaveMeetup(ctx context.Context, id, userID string) (*Meetup, error)

	// GetStats returns the total and last-7-day meetup counts
	GetStats(ctx context.Context) (*Stats, error)
}
