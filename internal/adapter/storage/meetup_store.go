// internal/adapter/storage/meetup_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neighborly/internal/domain/geo"
	"neighborly/internal/domain/meetup"
	"neighborly/internal/domain/paging"
)

const meetupColumns = `id, title, description, category, creator, type, meetup_format,
	meetup_location, visibility_location, visibility_radius, address, venue, latitude, longitude,
	virtual_link, meeting_code, meeting_password, date, start_time, end_time,
	max_attendees, has_no_limit, gender_specific, max_male, max_female, max_transgender,
	attendees, waiting_list, tags, image, price, payment_method, allow_chat_continuation,
	status, created_at, updated_at`

// MeetupStore implements the meetup store interface using PostgreSQL
type MeetupStore struct {
	db *pgxpool.Pool
}

// NewMeetupStore creates a new PostgreSQL-backed meetup store
func NewMeetupStore(db *pgxpool.Pool) *MeetupStore {
	return &MeetupStore{db: db}
}

// CreateMeetup inserts a new meetup
func (s *MeetupStore) CreateMeetup(ctx context.Context, m meetup.Meetup) error {
	address, venue, lat, lon := flattenLocation(m.Location)

	query := `
		INSERT INTO meetups (` + meetupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36)
	`

	_, err := s.db.Exec(ctx, query,
		m.ID, m.Title, m.Description, m.Category, m.Creator, m.Type, m.Format,
		m.MeetupLocation, m.VisibilityLocation, m.VisibilityRadius, address, venue, lat, lon,
		m.VirtualLink, m.MeetingCode, m.MeetingPassword, m.Date, m.StartTime, m.EndTime,
		m.MaxAttendees, m.HasNoLimit, m.GenderSpecific, m.MaxMale, m.MaxFemale, m.MaxTransgender,
		nonNil(m.Attendees), nonNil(m.WaitingList), nonNil(m.Tags), m.Image, m.Price, m.PaymentMethod, m.AllowChatContinuation,
		m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting meetup: %w", err)
	}

	return nil
}

// GetMeetup retrieves a meetup by ID
func (s *MeetupStore) GetMeetup(ctx context.Context, id string) (*meetup.Meetup, error) {
	query := `SELECT ` + meetupColumns + ` FROM meetups WHERE id = $1`

	m, err := scanMeetup(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, meetup.ErrNotFound
		}
		return nil, fmt.Errorf("error getting meetup: %w", err)
	}

	return m, nil
}

// FindMeetups finds meetups matching the filter, earliest date first
func (s *MeetupStore) FindMeetups(ctx context.Context, filter meetup.Filter, page *paging.Request) ([]meetup.Meetup, int64, error) {
	w := meetupWhere(filter)

	query := `SELECT ` + meetupColumns + ` FROM meetups` + w.String() + ` ORDER BY date ASC, created_at ASC`
	args := w.args

	var total int64
	if page != nil {
		countQuery := `SELECT count(*) FROM meetups` + w.String()
		if err := s.db.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("error counting meetups: %w", err)
		}

		var clause string
		clause, args = w.page(page.Normalize().Limit, page.Offset())
		query += clause
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var meetups []meetup.Meetup
	for rows.Next() {
		m, err := scanMeetup(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning meetup: %w", err)
		}
		meetups = append(meetups, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating meetups: %w", err)
	}

	return meetups, total, nil
}

func meetupWhere(filter meetup.Filter) *where {
	w := &where{}

	if filter.Category != "" {
		w.add("category = %s", filter.Category)
	}
	if filter.Type != "" {
		w.add("type = %s", filter.Type)
	}
	if filter.Format != "" {
		w.add("meetup_format = %s", filter.Format)
	}
	if filter.Status != "" {
		w.add("status = %s", filter.Status)
	}
	if filter.Creator != "" {
		w.add("creator = %s", filter.Creator)
	}
	if filter.Location != "" {
		w.addSame("(meetup_location ILIKE ? OR address ILIKE ?)", like(filter.Location))
	}
	if filter.VisibilityLocation != "" {
		w.add("visibility_location ILIKE %s", like(filter.VisibilityLocation))
	}
	if filter.VisibilityRadius > 0 {
		w.add("visibility_radius <= %s", filter.VisibilityRadius)
	}
	if len(filter.Tags) > 0 {
		w.add("tags && %s", filter.Tags)
	}
	if filter.Search != "" {
		w.addSame("(title ILIKE ? OR description ILIKE ? OR array_to_string(tags, ' ') ILIKE ?)", like(filter.Search))
	}
	if filter.Bounds != nil {
		b := filter.Bounds
		w.add("latitude BETWEEN %s AND %s", b.MinLat, b.MaxLat)
		w.add("longitude BETWEEN %s AND %s", b.MinLon, b.MaxLon)
	}

	return w
}

// UpdateMeetup writes every field except the attendee set. The cap guard runs
// in the same statement so a concurrent join cannot slip under it.
func (s *MeetupStore) UpdateMeetup(ctx context.Context, m meetup.Meetup) error {
	address, venue, lat, lon := flattenLocation(m.Location)

	query := `
		UPDATE meetups SET
			title = $2, description = $3, category = $4, type = $5, meetup_format = $6,
			meetup_location = $7, visibility_location = $8, visibility_radius = $9,
			address = $10, venue = $11, latitude = $12, longitude = $13,
			virtual_link = $14, meeting_code = $15, meeting_password = $16,
			date = $17, start_time = $18, end_time = $19,
			max_attendees = $20, has_no_limit = $21, gender_specific = $22,
			max_male = $23, max_female = $24, max_transgender = $25,
			tags = $26, image = $27, price = $28, payment_method = $29,
			allow_chat_continuation = $30, status = $31, updated_at = $32
		WHERE id = $1 AND ($21 OR cardinality(attendees) <= $20)
	`

	tag, err := s.db.Exec(ctx, query,
		m.ID, m.Title, m.Description, m.Category, m.Type, m.Format,
		m.MeetupLocation, m.VisibilityLocation, m.VisibilityRadius,
		address, venue, lat, lon,
		m.VirtualLink, m.MeetingCode, m.MeetingPassword,
		m.Date, m.StartTime, m.EndTime,
		m.MaxAttendees, m.HasNoLimit, m.GenderSpecific,
		m.MaxMale, m.MaxFemale, m.MaxTransgender,
		nonNil(m.Tags), m.Image, m.Price, m.PaymentMethod,
		m.AllowChatContinuation, m.Status, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error updating meetup: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := s.GetMeetup(ctx, m.ID); err != nil {
			return err
		}
		return meetup.ErrCapacityBelowAttendees
	}

	return nil
}

// DeleteMeetup removes a meetup
func (s *MeetupStore) DeleteMeetup(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM meetups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting meetup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return meetup.ErrNotFound
	}
	return nil
}

// AddAttendee appends userID in a single conditional update. When no row
// matches, the current state decides which rule rejected the join.
func (s *MeetupStore) AddAttendee(ctx context.Context, id, userID string) (*meetup.Meetup, error) {
	query := `
		UPDATE meetups
		SET attendees = array_append(attendees, $2), updated_at = now()
		WHERE id = $1
			AND NOT ($2 = ANY(attendees))
			AND (has_no_limit OR cardinality(attendees) < max_attendees)
		RETURNING ` + meetupColumns

	m, err := scanMeetup(s.db.QueryRow(ctx, query, id, userID))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error joining meetup: %w", err)
	}

	current, err := s.GetMeetup(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.HasAttendee(userID) {
		return nil, meetup.ErrAlreadyJoined
	}
	return nil, meetup.ErrMeetupFull
}

// RemoveAttendee removes userID in a single conditional update
func (s *MeetupStore) RemoveAttendee(ctx context.Context, id, userID string) (*meetup.Meetup, error) {
	query := `
		UPDATE meetups
		SET attendees = array_remove(attendees, $2), updated_at = now()
		WHERE id = $1 AND $2 = ANY(attendees)
		RETURNING ` + meetupColumns

	m, err := scanMeetup(s.db.QueryRow(ctx, query, id, userID))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error leaving meetup: %w", err)
	}

	if _, err := s.GetMeetup(ctx, id); err != nil {
		return nil, err
	}
	return nil, meetup.ErrNotJoined
}

// CountMeetups counts meetups created at or after since
func (s *MeetupStore) CountMeetups(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM meetups WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting meetups: %w", err)
	}
	return count, nil
}

func scanMeetup(row scanner) (*meetup.Meetup, error) {
	var (
		m              meetup.Meetup
		address, venue string
		lat, lon       *float64
	)

	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Category, &m.Creator, &m.Type, &m.Format,
		&m.MeetupLocation, &m.VisibilityLocation, &m.VisibilityRadius, &address, &venue, &lat, &lon,
		&m.VirtualLink, &m.MeetingCode, &m.MeetingPassword, &m.Date, &m.StartTime, &m.EndTime,
		&m.MaxAttendees, &m.HasNoLimit, &m.GenderSpecific, &m.MaxMale, &m.MaxFemale, &m.MaxTransgender,
		&m.Attendees, &m.WaitingList, &m.Tags, &m.Image, &m.Price, &m.PaymentMethod, &m.AllowChatContinuation,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Location = buildLocation(address, venue, lat, lon)
	m.CurrentAttendees = len(m.Attendees)
	return &m, nil
}

func flattenLocation(loc *meetup.Location) (address, venue string, lat, lon *float64) {
	if loc == nil {
		return "", "", nil, nil
	}
	if loc.Coordinates != nil {
		lat = &loc.Coordinates.Latitude
		lon = &loc.Coordinates.Longitude
	}
	return loc.Address, loc.Venue, lat, lon
}

func buildLocation(address, venue string, lat, lon *float64) *meetup.Location {
	if address == "" && venue == "" && lat == nil {
		return nil
	}
	loc := &meetup.Location{
		Address: strings.TrimSpace(address),
		Venue:   strings.TrimSpace(venue),
	}
	if lat != nil && lon != nil {
		loc.Coordinates = &geo.Point{Latitude: *lat, Longitude: *lon}
	}
	return loc
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
