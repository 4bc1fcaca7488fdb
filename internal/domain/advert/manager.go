// internal/domain/advert/manager.go

package advert

import (
	"context"

	"neighborly/internal/domain/paging"
)

// Filter defines criteria for listing advertisements
type Filter struct {
	State      string
	City       string
	Localities []string
	Status     Status
	CreatedBy  string
	Page       paging.Request
}

// Patch carries the fields an update may change. Nil means unchanged.
type Patch struct {
	TemplateID          *string
	Category            *string
	Heading             *string
	BriefDescription    *string
	ContactInfo         *string
	Location            *string
	Website             *string
	Icon                *string
	DetailedHeading     *string
	DetailedDescription *string
	SpecialOffers       *string
	DetailedLocation    *string
	DetailedWebsite     *string
	DetailedContactInfo *string
	AdditionalDetails   *string
	State               *string
	City                *string
	Localities          []string
	Duration            *Duration
	UploadedFiles       []string
}

// Apply copies the set fields of p onto a. It reports whether localities or
// duration changed so the caller can reprice.
func (p Patch) Apply(a *Advertisement) (repriced bool) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.TemplateID, p.TemplateID)
	set(&a.Category, p.Category)
	set(&a.Heading, p.Heading)
	set(&a.BriefDescription, p.BriefDescription)
	set(&a.ContactInfo, p.ContactInfo)
	set(&a.Location, p.Location)
	set(&a.Website, p.Website)
	set(&a.Icon, p.Icon)
	set(&a.DetailedHeading, p.DetailedHeading)
	set(&a.DetailedDescription, p.DetailedDescription)
	set(&a.SpecialOffers, p.SpecialOffers)
	set(&a.DetailedLocation, p.DetailedLocation)
	set(&a.DetailedWebsite, p.DetailedWebsite)
	set(&a.DetailedContactInfo, p.DetailedContactInfo)
	set(&a.AdditionalDetails, p.AdditionalDetails)
	set(&a.State, p.State)
	set(&a.City, p.City)
	if p.UploadedFiles != nil {
		a.UploadedFiles = p.UploadedFiles
	}
	if p.Localities != nil {
		a.Localities = UniqueLocalities(p.Localities)
		repriced = true
	}
	if p.Duration != nil {
		a.Duration = *p.Duration
		repriced = true
	}
	return repriced
}

// Stats summarizes advertisements for the admin dashboard
type Stats struct {
	Total        int64   `json:"total"`
	Active       int64   `json:"active"`
	Expired      int64   `json:"expired"`
	Draft        int64   `json:"draft"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// Checkout is the client-side handle for paying an advertisement
type Checkout struct {
	AdvertisementID string  `json:"advertisementId"`
	PaymentIntentID string  `json:"paymentIntentId"`
	ClientSecret    string  `json:"clientSecret"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

// PaymentIntent is the gateway's view of a payment
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
}

// PaymentSucceeded is the intent status that allows activation
const PaymentSucceeded = "succeeded"

// PaymentGateway creates and inspects payments for advertisements
type PaymentGateway interface {
	// CreateIntent opens a payment for amount in the currency's minor unit
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error)

	// GetIntent fetches the current state of an intent
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// Manager defines the interface for advertisement management
type Manager interface {
	// CreateAdvertisement prices the draft and stores it with status draft
	CreateAdvertisement(ctx context.Context, userID string, draft Advertisement) (*Advertisement, error)

	// GetAdvertisement returns an advertisement by ID
	GetAdvertisement(ctx context.Context, id string) (*Advertisement, error)

	// ListAdvertisements returns advertisements newest first
	ListAdvertisements(ctx context.Context, filter Filter) (paging.Result[Advertisement], error)

	// ListUserAdvertisements returns the advertisements created by userID
	ListUserAdvertisements(ctx context.Context, userID string, page paging.Request) (paging.Result[Advertisement], error)

	// SearchByLocation returns active advertisements targeting the location
	SearchByLocation(ctx context.Context, state, city string, localities []string, page paging.Request) (paging.Result[Advertisement], error)

	// UpdateAdvertisement applies a patch; only the owner may update
	UpdateAdvertisement(ctx context.Context, id, userID string, patch Patch) (*Advertisement, error)

	// DeleteAdvertisement removes an advertisement; only the owner may delete
	DeleteAdvertisement(ctx context.Context, id, userID string) error

	// CalculatePricing previews the price of a run
	CalculatePricing(localities []string, hours, days int) (Pricing, error)

	// Checkout opens a payment for a draft advertisement
	Checkout(ctx context.Context, id, userID string) (*Checkout, error)

	// Activate moves a paid draft to active
	Activate(ctx context.Context, id, userID string) (*Advertisement, error)

	// GetStats returns counters and revenue
	GetStats(ctx context.Context) (*Stats, error)
}
