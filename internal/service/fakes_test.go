package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anirudhpai/event-registration-api/internal/model"
	"github.com/anirudhpai/event-registration-api/internal/repository"
)

// memStore is an in-memory EventStore + AttendeeStore that mimics the
// storage layer's behavior: cascade on delete, capacity re-check before
// insert, and the (event, email) uniqueness guard at insert time.
type memStore struct {
	mu        sync.Mutex
	events    map[string]model.Event
	attendees map[string][]model.Attendee
}

func newMemStore() *memStore {
	return &memStore{
		events:    make(map[string]model.Event),
		attendees: make(map[string][]model.Attendee),
	}
}

func (s *memStore) derived(e model.Event) model.Event {
	e.CurrentAttendees = len(s.attendees[e.ID])
	e.AvailableCapacity = e.MaxCapacity - e.CurrentAttendees
	e.AttendeeNamesAndEmails = nil
	return e
}

func (s *memStore) Create(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = *e
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.derived(e)
	return &out, nil
}

func (s *memStore) ListUpcoming(_ context.Context, now time.Time, limit, offset int) ([]model.Event, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var upcoming []model.Event
	for _, e := range s.events {
		if e.StartTime.After(now) {
			upcoming = append(upcoming, s.derived(e))
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartTime.Before(upcoming[j].StartTime)
	})

	total := len(upcoming)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return upcoming[offset:end], total, nil
}

func (s *memStore) Update(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return repository.ErrNotFound
	}
	s.events[e.ID] = *e
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.events, id)
	delete(s.attendees, id)
	return nil
}

func (s *memStore) Register(_ context.Context, att *model.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[att.EventID]
	if !ok {
		return repository.ErrNotFound
	}
	if len(s.attendees[att.EventID]) >= e.MaxCapacity {
		return repository.ErrEventFull
	}
	for _, existing := range s.attendees[att.EventID] {
		if existing.Email == att.Email {
			return repository.ErrAlreadyRegistered
		}
	}
	s.attendees[att.EventID] = append(s.attendees[att.EventID], *att)
	return nil
}

func (s *memStore) ListByEvent(_ context.Context, eventID string, limit, offset int) ([]model.Attendee, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := append([]model.Attendee(nil), s.attendees[eventID]...)
	sort.Slice(all, func(i, j int) bool {
		return all[i].RegisteredAt.Before(all[j].RegisteredAt)
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *memStore) NamesAndEmails(_ context.Context, eventID string) ([]model.AttendeeContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := append([]model.Attendee(nil), s.attendees[eventID]...)
	sort.Slice(all, func(i, j int) bool {
		return all[i].RegisteredAt.Before(all[j].RegisteredAt)
	})

	var contacts []model.AttendeeContact
	for _, a := range all {
		contacts = append(contacts, model.AttendeeContact{Name: a.Name, Email: a.Email})
	}
	return contacts, nil
}
