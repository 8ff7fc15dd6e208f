package service

import (
	"context"
	"errors"
	"strings"

	"github.com/anirudhpai/event-registration-api/internal/clock"
	"github.com/anirudhpai/event-registration-api/internal/model"
	"github.com/anirudhpai/event-registration-api/internal/repository"
	"github.com/google/uuid"
)

// ErrEventStarted is returned when registering for an event whose start time
// is not strictly in the future.
var ErrEventStarted = errors.New("cannot register for an event that has already started or ended")

// RegistrationService validates and commits registrations against an event's
// current state.
type RegistrationService struct {
	events    EventStore
	attendees AttendeeStore
	clock     clock.Clock
	pages     Pagination
}

// NewRegistrationService constructs a RegistrationService with its
// dependencies.
func NewRegistrationService(events EventStore, attendees AttendeeStore, clk clock.Clock, pages Pagination) *RegistrationService {
	return &RegistrationService{events: events, attendees: attendees, clock: clk, pages: pages}
}

// Register attempts to register an attendee for an event. Checks run in a
// fixed order and the first failure short-circuits with no partial writes:
//
//  1. resolve the event                      → repository.ErrNotFound
//  2. event must be upcoming                 → ErrEventStarted
//  3. event must have capacity               → repository.ErrEventFull
//  4. attendee fields must be valid          → ValidationError
//  5. transactional insert; capacity is re-checked under the event row lock
//     and a duplicate email surfaces as repository.ErrAlreadyRegistered
//     from the unique index at commit time.
func (s *RegistrationService) Register(ctx context.Context, eventID string, req model.RegisterRequest) (*model.Attendee, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !event.IsUpcoming(now) {
		return nil, ErrEventStarted
	}
	if event.IsFull() {
		return nil, repository.ErrEventFull
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	v := violations{}
	if req.Name == "" {
		v.add("name", "name is required")
	}
	if req.Email == "" {
		v.add("email", "email is required")
	} else if !isValidEmail(req.Email) {
		v.add("email", "email is not a valid email address")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	attendee := &model.Attendee{
		ID:           uuid.NewString(),
		EventID:      event.ID,
		Name:         req.Name,
		Email:        req.Email,
		RegisteredAt: now,
	}
	if err := s.attendees.Register(ctx, attendee); err != nil {
		return nil, err
	}
	return attendee, nil
}

// ListAttendees returns the page of attendees for an event ordered by
// registration time ascending. The event must exist.
func (s *RegistrationService) ListAttendees(ctx context.Context, eventID string, page, pageSize int) (model.Page[model.Attendee], error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return model.Page[model.Attendee]{}, err
	}

	page, pageSize, offset := s.pages.normalize(page, pageSize)
	attendees, total, err := s.attendees.ListByEvent(ctx, eventID, pageSize, offset)
	if err != nil {
		return model.Page[model.Attendee]{}, err
	}
	if attendees == nil {
		attendees = []model.Attendee{}
	}
	return model.Page[model.Attendee]{Count: total, Page: page, PageSize: pageSize, Results: attendees}, nil
}
