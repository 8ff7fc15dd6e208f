package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anirudhpai/event-registration-api/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttendeeRepository handles persistence for attendee registrations.
type AttendeeRepository struct {
	db *pgxpool.Pool
}

// NewAttendeeRepository constructs an AttendeeRepository.
func NewAttendeeRepository(db *pgxpool.Pool) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

// Register inserts the attendee inside a single transaction.
//
// The event row is locked with SELECT … FOR UPDATE and the attendee count is
// re-read under that lock, so two concurrent registrations for the last slot
// serialise and exactly one succeeds. Duplicate emails are never pre-checked:
// the unique index on (event_id, email) is the authoritative guard, and a
// violating insert surfaces as ErrAlreadyRegistered.
func (r *AttendeeRepository) Register(ctx context.Context, att *model.Attendee) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Ensure the transaction is always resolved.
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var maxCapacity int
	err = tx.QueryRow(ctx,
		`SELECT max_capacity FROM events WHERE id = $1 FOR UPDATE`,
		att.EventID,
	).Scan(&maxCapacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendees WHERE event_id = $1`,
		att.EventID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count attendees: %w", err)
	}
	if count >= maxCapacity {
		err = ErrEventFull
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO attendees (id, event_id, name, email, registered_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		att.ID, att.EventID, att.Name, att.Email, att.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrAlreadyRegistered
			return err
		}
		return fmt.Errorf("insert attendee: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByEvent returns the page of attendees for an event ordered by
// registration time ascending, plus the total count.
func (r *AttendeeRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]model.Attendee, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendees WHERE event_id = $1`, eventID,
	).Scan(&total)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("count attendees: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, name, email, registered_at
		 FROM attendees
		 WHERE event_id = $1
		 ORDER BY registered_at ASC
		 LIMIT $2 OFFSET $3`,
		eventID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.RegisteredAt); err != nil {
			return nil, 0, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, total, rows.Err()
}

// NamesAndEmails returns the read-only contact projection for an event.
func (r *AttendeeRepository) NamesAndEmails(ctx context.Context, eventID string) ([]model.AttendeeContact, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, email
		 FROM attendees
		 WHERE event_id = $1
		 ORDER BY registered_at ASC`,
		eventID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("list attendee contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.AttendeeContact
	for rows.Next() {
		var c model.AttendeeContact
		if err := rows.Scan(&c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan attendee contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
