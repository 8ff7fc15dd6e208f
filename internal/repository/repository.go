// Package repository implements all database queries for the event
// registration system. It uses pgx directly (no ORM) for transparency and
// performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anirudhpai/event-registration-api/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEventFull is returned when an event has no remaining capacity.
var ErrEventFull = errors.New("event is full")

// ErrAlreadyRegistered is returned when the same email registers twice for
// one event. It always originates from the unique index on (event_id, email),
// never from an application-level existence check.
var ErrAlreadyRegistered = errors.New("email already registered for this event")

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Malformed UUIDs in the URL are indistinguishable from unknown events to
// callers, so they map to ErrNotFound.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

const eventColumns = `e.id, e.name, e.location, e.start_time, e.end_time,
	e.max_capacity, e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM attendees a WHERE a.event_id = e.id)`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Name, &e.Location, &e.StartTime, &e.EndTime,
		&e.MaxCapacity, &e.CreatedAt, &e.UpdatedAt, &e.CurrentAttendees,
	)
	if err != nil {
		return nil, err
	}
	e.AvailableCapacity = e.MaxCapacity - e.CurrentAttendees
	return &e, nil
}

// Create inserts a new event. The service layer assigns the ID and
// timestamps before calling.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, name, location, start_time, end_time, max_capacity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Name, e.Location, e.StartTime, e.EndTime, e.MaxCapacity, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event with its derived attendee count, or
// ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListUpcoming returns the page of events with start_time strictly after
// now, ordered by start_time ascending, plus the total count of matches.
func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time, limit, offset int) ([]model.Event, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE start_time > $1`, now,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count upcoming events: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events e
		 WHERE e.start_time > $1
		 ORDER BY e.start_time ASC
		 LIMIT $2 OFFSET $3`,
		now, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, total, rows.Err()
}

// Update persists the merged event state or returns ErrNotFound.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET name = $2, location = $3, start_time = $4, end_time = $5,
		     max_capacity = $6, updated_at = $7
		 WHERE id = $1`,
		e.ID, e.Name, e.Location, e.StartTime, e.EndTime, e.MaxCapacity, e.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event. The ON DELETE CASCADE foreign key removes all of
// its attendees in the same statement's transaction.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
