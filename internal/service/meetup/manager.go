// internal/service/meetup/manager.go

package meetup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"neighborly/internal/apperror"
	"neighborly/internal/clock"
	"neighborly/internal/domain/event"
	"neighborly/internal/domain/geo"
	"neighborly/internal/domain/meetup"
	"neighborly/internal/domain/paging"
	"neighborly/internal/telemetry"
)

const recentWindow = 7 * 24 * time.Hour

// MeetupStore defines the storage interface for meetups
type MeetupStore interface {
	// CreateMeetup inserts a new meetup
	CreateMeetup(ctx context.Context, m meetup.Meetup) error

	// GetMeetup retrieves a meetup by ID, meetup.ErrNotFound when missing
	GetMeetup(ctx context.Context, id string) (*meetup.Meetup, error)

	// FindMeetups returns meetups matching the filter sorted by date. A nil
	// page returns every match and a zero total.
	FindMeetups(ctx context.Context, filter meetup.Filter, page *paging.Request) ([]meetup.Meetup, int64, error)

	// UpdateMeetup writes every field except the attendee set. It fails with
	// meetup.ErrCapacityBelowAttendees when the new cap is under the count.
	UpdateMeetup(ctx context.Context, m meetup.Meetup) error

	// DeleteMeetup removes a meetup
	DeleteMeetup(ctx context.Context, id string) error

	// AddAttendee atomically appends userID when not present and not full
	AddAttendee(ctx context.Context, id, userID string) (*meetup.Meetup, error)

	// RemoveAttendee atomically removes userID when present
	RemoveAttendee(ctx context.Context, id, userID string) (*meetup.Meetup, error)

	// CountMeetups counts meetups created at or after since
	CountMeetups(ctx context.Context, since time.Time) (int64, error)
}

// MeetupManager implements the meetup.Manager interface
type MeetupManager struct {
	store  MeetupStore
	geo    geo.Service
	events event.Publisher
	clock  clock.Clock
	logger *zap.Logger
}

// NewMeetupManager creates a new meetup manager
func NewMeetupManager(
	store MeetupStore,
	geoService geo.Service,
	events event.Publisher,
	clk clock.Clock,
	logger *zap.Logger,
) *MeetupManager {
	return &MeetupManager{
		store:  store,
		geo:    geoService,
		events: events,
		clock:  clk,
		logger: logger.Named("meetup"),
	}
}

// CreateMeetup persists a new meetup with the creator as first attendee
func (mm *MeetupManager) CreateMeetup(ctx context.Context, creatorID string, draft meetup.Meetup) (*meetup.Meetup, error) {
	ctx, span := telemetry.StartSpan(ctx, "meetup.Create")
	defer span.End()

	now := mm.clock.Now()

	m := draft
	m.ID = uuid.New().String()
	m.Creator = creatorID
	m.Attendees = []string{creatorID}
	m.CurrentAttendees = 1
	m.WaitingList = []string{}
	m.Status = meetup.StatusUpcoming
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Tags == nil {
		m.Tags = []string{}
	}

	if err := meetup.Validate(&m, now); err != nil {
		return nil, err
	}

	if err := mm.store.CreateMeetup(ctx, m); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("error saving meetup: %w", err)
	}

	mm.publish(ctx, event.TypeCreated, m.ID, creatorID, m)
	return &m, nil
}

// GetMeetup returns a meetup by ID
func (mm *MeetupManager) GetMeetup(ctx context.Context, id string) (*meetup.Meetup, error) {
	m, err := mm.store.GetMeetup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting meetup: %w", err)
	}
	return m, nil
}

// ListMeetups returns meetups matching the filter sorted by date. Area
// queries are narrowed by bounding box in the store and then filtered by
// exact distance here, so they are paged in memory.
func (mm *MeetupManager) ListMeetups(ctx context.Context, filter meetup.Filter) (paging.Result[meetup.Meetup], error) {
	ctx, span := telemetry.StartSpan(ctx, "meetup.List")
	defer span.End()

	page := filter.Page.Normalize()
	filter.Page = page

	if filter.Area == nil {
		filter.Bounds = nil
		items, total, err := mm.store.FindMeetups(ctx, filter, &page)
		if err != nil {
			telemetry.RecordError(span, err)
			return paging.Result[meetup.Meetup]{}, fmt.Errorf("error finding meetups: %w", err)
		}
		return paging.NewResult(items, total, page), nil
	}

	center := filter.Area.Center
	if !mm.geo.ValidateCoordinates(center.Latitude, center.Longitude) {
		return paging.Result[meetup.Meetup]{}, apperror.ErrInvalidCoordinates
	}
	radius := mm.geo.NormalizeRadius(filter.Area.RadiusKm)
	bounds := mm.geo.BoundingBox(center, radius)
	filter.Area = &geo.Area{Center: center, RadiusKm: radius}
	filter.Bounds = &bounds
	span.SetAttributes(attribute.Float64("geo.radius_km", radius))

	candidates, _, err := mm.store.FindMeetups(ctx, filter, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return paging.Result[meetup.Meetup]{}, fmt.Errorf("error finding meetups: %w", err)
	}

	nearby := make([]meetup.Meetup, 0, len(candidates))
	for _, m := range candidates {
		p, ok := m.Coordinates()
		if ok && mm.geo.WithinRadius(p, center, radius) {
			nearby = append(nearby, m)
		}
	}

	total := int64(len(nearby))
	start := min(page.Offset(), len(nearby))
	end := min(start+page.Limit, len(nearby))
	return paging.NewResult(nearby[start:end], total, page), nil
}

// UpdateMeetup applies a patch; only the creator may update
func (mm *MeetupManager) UpdateMeetup(ctx context.Context, id, userID string, patch meetup.Patch) (*meetup.Meetup, error) {
	m, err := mm.store.GetMeetup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting meetup: %w", err)
	}
	if m.Creator != userID {
		return nil, apperror.Forbidden("Not authorized to update this meetup")
	}

	now := mm.clock.Now()

	// An unchanged date is not re-checked against today.
	ref := now
	if patch.Date == nil {
		ref = m.Date
	}

	patch.Apply(m)
	if err := meetup.Validate(m, ref); err != nil {
		return nil, err
	}
	if !m.HasNoLimit && m.MaxAttendees < len(m.Attendees) {
		return nil, meetup.ErrCapacityBelowAttendees
	}
	m.UpdatedAt = now

	if err := mm.store.UpdateMeetup(ctx, *m); err != nil {
		return nil, fmt.Errorf("error updating meetup: %w", err)
	}

	mm.publish(ctx, event.TypeUpdated, m.ID, userID, m)
	return m, nil
}

// DeleteMeetup removes a meetup; only the creator may delete
func (mm *MeetupManager) DeleteMeetup(ctx context.Context, id, userID string) error {
	m, err := mm.store.GetMeetup(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting meetup: %w", err)
	}
	if m.Creator != userID {
		return apperror.Forbidden("Not authorized to delete this meetup")
	}

	if err := mm.store.DeleteMeetup(ctx, id); err != nil {
		return fmt.Errorf("error deleting meetup: %w", err)
	}

	mm.publish(ctx, event.TypeDeleted, id, userID, nil)
	return nil
}

// JoinMeetup adds the user to the attendees
func (mm *MeetupManager) JoinMeetup(ctx context.Context, id, userID string) (*meetup.Meetup, error) {
	ctx, span := telemetry.StartSpan(ctx, "meetup.Join")
	defer span.End()
	span.SetAttributes(attribute.String("meetup.id", id))

	m, err := mm.store.AddAttendee(ctx, id, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("error joining meetup: %w", err)
	}

	mm.publish(ctx, event.TypeJoined, id, userID, map[string]int{"currentAttendees": m.CurrentAttendees})
	return m, nil
}

// LeaveMeetup removes the user from the attendees
func (mm *MeetupManager) LeaveMeetup(ctx context.Context, id, userID string) (*meetup.Meetup, error) {
	ctx, span := telemetry.StartSpan(ctx, "meetup.Leave")
	defer span.End()
	span.SetAttributes(attribute.String("meetup.id", id))

	m, err := mm.store.RemoveAttendee(ctx, id, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("error leaving meetup: %w", err)
	}

	mm.publish(ctx, event.TypeLeft, id, userID, map[string]int{"currentAttendees": m.CurrentAttendees})
	return m, nil
}

// GetStats returns the total and last-7-day meetup counts
func (mm *MeetupManager) GetStats(ctx context.Context) (*meetup.Stats, error) {
	total, err := mm.store.CountMeetups(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("error counting meetups: %w", err)
	}
	recent, err := mm.store.CountMeetups(ctx, mm.clock.Now().Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("error counting recent meetups: %w", err)
	}
	return &meetup.Stats{TotalMeetups: total, RecentMeetups: recent}, nil
}

func (mm *MeetupManager) publish(ctx context.Context, eventType, id, userID string, data any) {
	err := mm.events.Publish(ctx, event.Event{
		Entity:     event.EntityMeetup,
		Type:       eventType,
		EntityID:   id,
		UserID:     userID,
		OccurredAt: mm.clock.Now(),
		Data:       data,
	})
	if err != nil {
		mm.logger.Warn("failed to publish meetup event",
			zap.String("type", eventType),
			zap.String("meetup_id", id),
			zap.Error(err),
		)
	}
}
