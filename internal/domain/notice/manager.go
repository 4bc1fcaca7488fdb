// internal/domain/notice/manager.go

package notice

import (
	"context"

	"neighborly/internal/domain/paging"
)

// Filter defines criteria for listing notices
type Filter struct {
	Category  string
	Location  string
	Status    Status
	Urgent    *bool
	CreatedBy string

	// NewestFirst orders by creation time only instead of urgent first
	NewestFirst bool

	Page paging.Request
}

// Patch carries the fields an update may change. Nil means unchanged.
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	Radius      *float64
	Contact     *string
	Urgent      *bool
	Duration    *Duration
}

// Apply copies the set fields of p onto n. It reports whether the duration
// changed so the caller can recompute the expiry.
func (p Patch) Apply(n *Notice) (durationChanged bool) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if p.Location != nil {
		n.Location = *p.Location
	}
	if p.Radius != nil {
		n.Radius = *p.Radius
	}
	if p.Contact != nil {
		n.Contact = *p.Contact
	}
	if p.Urgent != nil {
		n.Urgent = *p.Urgent
	}
	if p.Duration != nil && *p.Duration != n.Duration {
		n.Duration = *p.Duration
		durationChanged = true
	}
	return durationChanged
}

// UrgentQuota is the caller's standing against the monthly urgent limit
type UrgentQuota struct {
	Count           int  `json:"count"`
	Limit           int  `json:"limit"`
	CanCreateUrgent bool `json:"canCreateUrgent"`
}

// Stats summarizes notices for the admin dashboard
type Stats struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	Expired int64 `json:"expired"`
	Urgent  int64 `json:"urgent"`
}

// Manager defines the interface for notice management
type Manager interface {
	// CreateNotice validates, derives expiresAt and enforces the urgent quota
	CreateNotice(ctx context.Context, userID string, draft Notice) (*Notice, error)

	// GetNotice returns a notice by ID
	GetNotice(ctx context.Context, id string) (*Notice, error)

	// ListNotices returns notices sorted urgent first, newest first
	ListNotices(ctx context.Context, filter Filter) (paging.Result[Notice], error)

	// ListUserNotices returns the notices created by userID
	ListUserNotices(ctx context.Context, userID string, page paging.Request) (paging.Result[Notice], error)

	// SearchByLocation returns active notices whose location contains the query
	SearchByLocation(ctx context.Context, location string, page paging.Request) (paging.Result[Notice], error)

	// UpdateNotice applies a patch; only the owner may update
	UpdateNotice(ctx context.Context, id, userID string, patch Patch) (*Notice, error)

	// DeleteNotice removes a notice; only the owner may delete
	DeleteNotice(ctx context.Context, id, userID string) error

	// UrgentCount returns the urgent notices userID created this month
	UrgentCount(ctx context.Context, userID string) (int, error)

	// CanCreateUrgent reports whether userID is below the monthly limit
	CanCreateUrgent(ctx context.Context, userID string) (bool, error)

	// GetUrgentQuota returns count, limit and availability in one call
	GetUrgentQuota(ctx context.Context, userID string) (*UrgentQuota, error)

	// GetStats returns notice counters
	GetStats(ctx context.Context) (*Stats, error)
}
