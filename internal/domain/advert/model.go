package advert

import (
	"time"
)

// Status is the lifecycle status of an advertisement
type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRemoved Status = "removed"
)

// Categories lists the accepted advertisement categories
var Categories = []string{
	"services",
	"products",
	"events",
	"housing",
	"jobs",
	"other",
}

// Field limits
const (
	MaxHeading             = 50
	MaxBriefDescription    = 100
	MaxContactInfo         = 30
	MaxLocation            = 50
	MaxDetailedHeading     = 100
	MaxDetailedDescription = 500
	MaxSpecialOffers       = 200
	MaxDetailedLocation    = 100
	MaxAdditionalDetails   = 300
	MaxUploadedFiles       = 5
)

// Duration is the paid run time of an advertisement
type Duration struct {
	Hours int `json:"hours"`
	Days  int `json:"days"`
}

// TotalHours returns the run time in hours
func (d Duration) TotalHours() int {
	return d.Hours + d.Days*24
}

// ExpiresAt returns the end of the run for an ad created at now
func (d Duration) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(d.TotalHours()) * time.Hour)
}

// Pricing is the computed price breakdown
type Pricing struct {
	BasePrice      float64 `json:"basePrice"`
	Discount       float64 `json:"discount"`
	FinalPrice     float64 `json:"finalPrice"`
	DiscountReason string  `json:"discountReason,omitempty"`
}

// Advertisement is a paid, locality-targeted listing
type Advertisement struct {
	ID                  string    `json:"id"`
	TemplateID          string    `json:"templateId"`
	Category            string    `json:"category,omitempty"`
	Heading             string    `json:"heading"`
	BriefDescription    string    `json:"briefDescription"`
	ContactInfo         string    `json:"contactInfo"`
	Location            string    `json:"location"`
	Website             string    `json:"website,omitempty"`
	Icon                string    `json:"icon"`
	DetailedHeading     string    `json:"detailedHeading"`
	DetailedDescription string    `json:"detailedDescription"`
	SpecialOffers       string    `json:"specialOffers,omitempty"`
	DetailedLocation    string    `json:"detailedLocation,omitempty"`
	DetailedWebsite     string    `json:"detailedWebsite,omitempty"`
	DetailedContactInfo string    `json:"detailedContactInfo,omitempty"`
	AdditionalDetails   string    `json:"additionalDetails,omitempty"`
	State               string    `json:"state"`
	City                string    `json:"city"`
	Localities          []string  `json:"localities"`
	Duration            Duration  `json:"duration"`
	Pricing             Pricing   `json:"pricing"`
	Status              Status    `json:"status"`
	PaymentIntentID     string    `json:"paymentIntentId,omitempty"`
	UploadedFiles       []string  `json:"uploadedFiles"`
	CreatedBy           string    `json:"createdBy"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	ExpiresAt           time.Time `json:"expiresAt"`
}
