// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anirudhpai/event-registration-api/internal/clock"
	"github.com/anirudhpai/event-registration-api/internal/model"
	"github.com/google/uuid"
)

// EventStore is the persistence surface the services need for events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	ListUpcoming(ctx context.Context, now time.Time, limit, offset int) ([]model.Event, int, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
}

// AttendeeStore is the persistence surface the services need for attendees.
type AttendeeStore interface {
	Register(ctx context.Context, att *model.Attendee) error
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]model.Attendee, int, error)
	NamesAndEmails(ctx context.Context, eventID string) ([]model.AttendeeContact, error)
}

// Pagination controls listing page sizes. Callers may override page_size per
// request up to MaxSize.
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPagination matches the reference deployment.
var DefaultPagination = Pagination{DefaultSize: 2, MaxSize: 100}

func (p Pagination) normalize(page, size int) (int, int, int) {
	if p.DefaultSize < 1 {
		p.DefaultSize = DefaultPagination.DefaultSize
	}
	if p.MaxSize < 1 {
		p.MaxSize = DefaultPagination.MaxSize
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = p.DefaultSize
	}
	if size > p.MaxSize {
		size = p.MaxSize
	}
	return page, size, (page - 1) * size
}

// EventService owns the event lifecycle: creation, partial updates,
// deletion, and listing. All timing rules consult the injected clock.
type EventService struct {
	events    EventStore
	attendees AttendeeStore
	clock     clock.Clock
	pages     Pagination
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, attendees AttendeeStore, clk clock.Clock, pages Pagination) *EventService {
	return &EventService{events: events, attendees: attendees, clock: clk, pages: pages}
}

// CreateEvent validates the full candidate state and persists it. All field
// violations are collected and reported together.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	now := s.clock.Now()

	v := violations{}
	if req.Name == "" {
		v.add("name", "name is required")
	}
	if req.Location == "" {
		v.add("location", "location is required")
	}
	if req.MaxCapacity < 1 {
		v.add("max_capacity", "max_capacity must be at least 1")
	}
	if req.StartTime.IsZero() {
		v.add("start_time", "start_time is required")
	}
	if req.EndTime.IsZero() {
		v.add("end_time", "end_time is required")
	}
	if !req.StartTime.IsZero() && !req.EndTime.IsZero() && !req.StartTime.Before(req.EndTime) {
		v.add("end_time", "end_time must be after start_time")
	}
	if !req.StartTime.IsZero() && !req.StartTime.After(now) {
		v.add("start_time", "start_time must be in the future")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	event := &model.Event{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Location:          req.Location,
		StartTime:         req.StartTime.UTC(),
		EndTime:           req.EndTime.UTC(),
		MaxCapacity:       req.MaxCapacity,
		AvailableCapacity: req.MaxCapacity,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// UpdateEvent merges the changed field-set over the stored record and
// re-validates. Time-window rules (ordering, future start) run only when
// start_time or end_time is part of the change; renaming a past event never
// re-triggers them. Effective value = new value if supplied, else stored.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := violations{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			v.add("name", "name is required")
		} else {
			event.Name = name
		}
	}
	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		if location == "" {
			v.add("location", "location is required")
		} else {
			event.Location = location
		}
	}
	if req.MaxCapacity != nil {
		if *req.MaxCapacity < 1 {
			v.add("max_capacity", "max_capacity must be at least 1")
		} else {
			event.MaxCapacity = *req.MaxCapacity
		}
	}
	if req.StartTime != nil {
		event.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime.UTC()
	}

	now := s.clock.Now()
	if req.TouchesTimeWindow() {
		if !event.StartTime.Before(event.EndTime) {
			v.add("end_time", "end_time must be after start_time")
		}
		if !event.StartTime.After(now) {
			v.add("start_time", "start_time must be in the future")
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	event.UpdatedAt = now
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	event.AvailableCapacity = event.MaxCapacity - event.CurrentAttendees
	return event, nil
}

// GetEvent returns a single event with derived fields and the read-only
// attendee contact projection.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.attendees.NamesAndEmails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load attendee contacts: %w", err)
	}
	event.AttendeeNamesAndEmails = contacts
	return event, nil
}

// ListUpcomingEvents returns the page of events starting strictly after now,
// ordered by start_time ascending.
func (s *EventService) ListUpcomingEvents(ctx context.Context, page, pageSize int) (model.Page[model.Event], error) {
	page, pageSize, offset := s.pages.normalize(page, pageSize)

	events, total, err := s.events.ListUpcoming(ctx, s.clock.Now(), pageSize, offset)
	if err != nil {
		return model.Page[model.Event]{}, fmt.Errorf("list upcoming events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return model.Page[model.Event]{Count: total, Page: page, PageSize: pageSize, Results: events}, nil
}

// DeleteEvent removes an event and, via the storage cascade, all of its
// attendees.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}
