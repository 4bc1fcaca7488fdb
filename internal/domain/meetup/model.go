package meetup

import (
	"slices"
	"time"

	"neighborly/internal/domain/geo"
)

// Type is the admission type of a meetup
type Type string

const (
	TypeFree       Type = "free"
	TypePaid       Type = "paid"
	TypeInviteOnly Type = "invite-only"
)

// Format is where a meetup takes place
type Format string

const (
	FormatPhysical Format = "physical"
	FormatVirtual  Format = "virtual"
)

// Status is the scheduling status of a meetup
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Categories lists the accepted meetup categories
var Categories = []string{
	"Photography",
	"Technology",
	"Health & Fitness",
	"Business",
	"Arts & Culture",
	"Sports",
	"Food & Drink",
	"Travel",
	"Learning",
	"Social",
	"Music",
	"Gaming",
}

// Location is the physical venue of a meetup
type Location struct {
	Address     string     `json:"address,omitempty"`
	Coordinates *geo.Point `json:"coordinates,omitempty"`
	Venue       string     `json:"venue,omitempty"`
}

// Meetup is a scheduled gathering owned by its creator
type Meetup struct {
	ID                    string    `json:"id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description"`
	Category              string    `json:"category"`
	Creator               string    `json:"creator"`
	Type                  Type      `json:"type"`
	Format                Format    `json:"meetupFormat"`
	MeetupLocation        string    `json:"meetupLocation,omitempty"`
	VisibilityLocation    string    `json:"visibilityLocation,omitempty"`
	VisibilityRadius      float64   `json:"visibilityRadius"`
	Location              *Location `json:"location,omitempty"`
	VirtualLink           string    `json:"virtualLink,omitempty"`
	MeetingCode           string    `json:"meetingCode,omitempty"`
	MeetingPassword       string    `json:"meetingPassword,omitempty"`
	Date                  time.Time `json:"date"`
	StartTime             string    `json:"startTime"`
	EndTime               string    `json:"endTime"`
	MaxAttendees          int       `json:"maxAttendees,omitempty"`
	HasNoLimit            bool      `json:"hasNoLimit"`
	GenderSpecific        bool      `json:"genderSpecific"`
	MaxMale               int       `json:"maxMale,omitempty"`
	MaxFemale             int       `json:"maxFemale,omitempty"`
	MaxTransgender        int       `json:"maxTransgender,omitempty"`
	CurrentAttendees      int       `json:"currentAttendees"`
	Attendees             []string  `json:"attendees"`
	WaitingList           []string  `json:"waitingList"`
	Tags                  []string  `json:"tags"`
	Image                 string    `json:"image,omitempty"`
	Price                 float64   `json:"price,omitempty"`
	PaymentMethod         string    `json:"paymentMethod,omitempty"`
	AllowChatContinuation bool      `json:"allowChatContinuation"`
	Status                Status    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Coordinates returns the stored point, if any
func (m *Meetup) Coordinates() (geo.Point, bool) {
	if m.Location == nil || m.Location.Coordinates == nil {
		return geo.Point{}, false
	}
	return *m.Location.Coordinates, true
}

// HasAttendee reports whether userID is in the attendee set
func (m *Meetup) HasAttendee(userID string) bool {
	return slices.Contains(m.Attendees, userID)
}

// IsFull reports whether a capped meetup has no free slot
func (m *Meetup) IsFull() bool {
	return !m.HasNoLimit && len(m.Attendees) >= m.MaxAttendees
}

// Join adds userID to the attendees. Gender sub-caps are not consulted.
func (m *Meetup) Join(userID string) error {
	if m.HasAttendee(userID) {
		return ErrAlreadyJoined
	}
	if m.IsFull() {
		return ErrMeetupFull
	}
	m.Attendees = append(m.Attendees, userID)
	m.CurrentAttendees = len(m.Attendees)
	return nil
}

// Leave removes userID from the attendees, keeping the order of the rest
func (m *Meetup) Leave(userID string) error {
	idx := slices.Index(m.Attendees, userID)
	if idx < 0 {
		return ErrNotJoined
	}
	m.Attendees = slices.Delete(m.Attendees, idx, idx+1)
	m.CurrentAttendees = len(m.Attendees)
	return nil
}
