// Package model defines the core domain types for the event registration system.
package model

import "time"

// Event represents a scheduled activity with a capacity-limited attendee list.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MaxCapacity int       `json:"max_capacity"`

	// Derived on every read from the attendee count, never stored.
	CurrentAttendees  int `json:"current_attendees_count"`
	AvailableCapacity int `json:"available_capacity"`

	// Read-only projection of registered attendees, populated on detail
	// reads only.
	AttendeeNamesAndEmails []AttendeeContact `json:"attendee_name_and_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remaining returns the number of open registration slots, never negative.
func (e *Event) Remaining() int {
	if e.CurrentAttendees >= e.MaxCapacity {
		return 0
	}
	return e.MaxCapacity - e.CurrentAttendees
}

// IsFull returns true when no slots remain.
func (e *Event) IsFull() bool {
	return e.CurrentAttendees >= e.MaxCapacity
}

// IsUpcoming returns true when the event starts strictly after now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.StartTime.After(now)
}

// Attendee represents a registration binding a person (by email) to one event.
type Attendee struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// AttendeeContact is the read-only name/email pair projected onto event
// detail responses.
type AttendeeContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MaxCapacity int       `json:"max_capacity"`
}

// UpdateEventRequest is the payload for partially updating an event.
// Pointer fields distinguish "omitted" from "explicitly set": only non-nil
// fields are part of the changed field-set.
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	Location    *string    `json:"location"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	MaxCapacity *int       `json:"max_capacity"`
}

// TouchesTimeWindow reports whether the update changes start_time or
// end_time. Time-window rules are re-validated only in that case.
func (r UpdateEventRequest) TouchesTimeWindow() bool {
	return r.StartTime != nil || r.EndTime != nil
}

// RegisterRequest is the payload for registering an attendee for an event.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Page is a paginated slice of results.
type Page[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
