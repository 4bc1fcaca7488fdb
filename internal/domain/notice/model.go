package notice

import (
	"time"
)

// Status is the lifecycle status of a notice
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRemoved Status = "removed"
)

// Duration is a symbolic notice lifetime
type Duration string

const (
	DurationPermanent Duration = "Permanent"
	DurationOneHour   Duration = "1 hour"
	DurationThreeHrs  Duration = "3 hours"
	DurationSixHrs    Duration = "6 hours"
	DurationTwelveHrs Duration = "12 hours"
	DurationOneDay    Duration = "1 day"
	DurationThreeDays Duration = "3 days"
	DurationOneWeek   Duration = "1 week"
)

// durationHours maps every expiring duration to its lifetime in hours
var durationHours = map[Duration]int{
	DurationOneHour:   1,
	DurationThreeHrs:  3,
	DurationSixHrs:    6,
	DurationTwelveHrs: 12,
	DurationOneDay:    24,
	DurationThreeDays: 72,
	DurationOneWeek:   168,
}

// Durations lists the accepted durations in display order
var Durations = []Duration{
	DurationPermanent,
	DurationOneHour,
	DurationThreeHrs,
	DurationSixHrs,
	DurationTwelveHrs,
	DurationOneDay,
	DurationThreeDays,
	DurationOneWeek,
}

// Categories lists the accepted notice categories
var Categories = []string{
	"Buy/Sell",
	"Job Postings",
	"Matrimony",
	"Offers",
	"Lost & Found",
	"Services",
	"Housing",
	"Events",
	"Miscellaneous",
}

const (
	MinRadius     = 1
	MaxRadius     = 50
	DefaultRadius = 5
)

// Notice is a short-lived local announcement
type Notice struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	Radius      float64    `json:"radius"`
	Contact     string     `json:"contact,omitempty"`
	Urgent      bool       `json:"urgent"`
	UrgentSince *time.Time `json:"urgentSince,omitempty"`
	Duration    Duration   `json:"duration"`
	Status      Status     `json:"status"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsPermanent reports whether the notice never expires
func (n *Notice) IsPermanent() bool {
	return n.Duration == DurationPermanent
}
