package service

import (
	"context"
	"testing"
	"time"

	"github.com/anirudhpai/event-registration-api/internal/clock"
	"github.com/anirudhpai/event-registration-api/internal/model"
	"github.com/anirudhpai/event-registration-api/internal/repository"
	"github.com/stretchr/testify/require"
)

func newRegistrationService(store *memStore) *RegistrationService {
	return NewRegistrationService(store, store, clock.NewFixed(testNow), DefaultPagination)
}

func seedEvent(store *memStore, id string, start time.Time, capacity int) {
	store.events[id] = model.Event{
		ID:          id,
		Name:        "Event " + id,
		Location:    "Hall",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		MaxCapacity: capacity,
	}
}

func TestRegistrationService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("registers attendee for upcoming event", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "e1", testNow.Add(24*time.Hour), 10)

		att, err := svc.Register(ctx, "e1", model.RegisterRequest{Name: "Ana", Email: "ana@example.com"})
		require.NoError(t, err)
		require.NotEmpty(t, att.ID)
		require.Equal(t, "e1", att.EventID)
		require.Equal(t, testNow, att.RegisteredAt)
		require.Len(t, store.attendees["e1"], 1)
	})

	t.Run("normalizes email to lower case", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "e1", testNow.Add(24*time.Hour), 10)

		att, err := svc.Register(ctx, "e1", model.RegisterRequest{Name: "Ana", Email: "  Ana@Example.COM "})
		require.NoError(t, err)
		require.Equal(t, "ana@example.com", att.Email)
	})

	t.Run("unknown event returns not found", func(t *testing.T) {
		svc := newRegistrationService(newMemStore())
		_, err := svc.Register(ctx, "missing", model.RegisterRequest{Name: "Ana", Email: "ana@example.com"})
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("started event rejects registration", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "started", testNow.Add(-time.Hour), 10)

		_, err := svc.Register(ctx, "started", model.RegisterRequest{Name: "Ana", Email: "ana@example.com"})
		require.ErrorIs(t, err, ErrEventStarted)
	})

	t.Run("event starting exactly now is not upcoming", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "boundary", testNow, 10)

		_, err := svc.Register(ctx, "boundary", model.RegisterRequest{Name: "Ana", Email: "ana@example.com"})
		require.ErrorIs(t, err, ErrEventStarted)
	})

	t.Run("full event rejects registration", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "e1", testNow.Add(24*time.Hour), 1)
		store.attendees["e1"] = []model.Attendee{{ID: "a1", EventID: "e1", Email: "first@x.com"}}

		_, err := svc.Register(ctx, "e1", model.RegisterRequest{Name: "Ana", Email: "ana@example.com"})
		require.ErrorIs(t, err, repository.ErrEventFull)
	})

	t.Run("capacity check precedes duplicate detection", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "e1", testNow.Add(24*time.Hour), 1)
		store.attendees["e1"] = []model.Attendee{{ID: "a1", EventID: "e1", Email: "ana@example.com"}}

		// Same email as the registered attendee, but the event is full.
		_, err := svc.Register(ctx, "e1", model.RegisterRequest{Name: "Ana", Email: "ana@example.com"})
		require.ErrorIs(t, err, repository.ErrEventFull)
	})

	t.Run("invalid fields reject before any write", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "e1", testNow.Add(24*time.Hour), 10)

		cases := []struct {
			name  string
			req   model.RegisterRequest
			field string
		}{
			{"empty name", model.RegisterRequest{Name: " ", Email: "ana@example.com"}, "name"},
			{"empty email", model.RegisterRequest{Name: "Ana", Email: ""}, "email"},
			{"missing at sign", model.RegisterRequest{Name: "Ana", Email: "ana.example.com"}, "email"},
			{"undotted domain", model.RegisterRequest{Name: "Ana", Email: "ana@localhost"}, "email"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Register(ctx, "e1", tc.req)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				require.Contains(t, verr.Fields, tc.field)
			})
		}
		require.Empty(t, store.attendees["e1"])
	})

	t.Run("duplicate email surfaces conflict from storage", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "e1", testNow.Add(24*time.Hour), 10)

		_, err := svc.Register(ctx, "e1", model.RegisterRequest{Name: "Ana", Email: "ana@example.com"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, "e1", model.RegisterRequest{Name: "Ana Again", Email: "ANA@example.com"})
		require.ErrorIs(t, err, repository.ErrAlreadyRegistered)
		require.Len(t, store.attendees["e1"], 1)
	})

	t.Run("single slot scenario", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		eventSvc := newEventService(store)

		req := validCreateRequest()
		req.MaxCapacity = 1
		event, err := eventSvc.CreateEvent(ctx, req)
		require.NoError(t, err)
		require.Equal(t, 1, event.AvailableCapacity)

		_, err = svc.Register(ctx, event.ID, model.RegisterRequest{Name: "A", Email: "a@x.com"})
		require.NoError(t, err)

		got, err := eventSvc.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		require.Equal(t, 0, got.AvailableCapacity)

		_, err = svc.Register(ctx, event.ID, model.RegisterRequest{Name: "B", Email: "b@x.com"})
		require.ErrorIs(t, err, repository.ErrEventFull)

		// A full event reports capacity before the duplicate; free a slot to
		// observe the conflict.
		store.events[event.ID] = func() model.Event {
			e := store.events[event.ID]
			e.MaxCapacity = 2
			return e
		}()
		_, err = svc.Register(ctx, event.ID, model.RegisterRequest{Name: "A", Email: "a@x.com"})
		require.ErrorIs(t, err, repository.ErrAlreadyRegistered)
	})
}

func TestRegistrationService_ListAttendees(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown event returns not found", func(t *testing.T) {
		svc := newRegistrationService(newMemStore())
		_, err := svc.ListAttendees(ctx, "missing", 1, 10)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("orders by registration time and paginates", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "e1", testNow.Add(24*time.Hour), 10)
		store.attendees["e1"] = []model.Attendee{
			{ID: "a3", EventID: "e1", Email: "c@x.com", RegisteredAt: testNow.Add(3 * time.Minute)},
			{ID: "a1", EventID: "e1", Email: "a@x.com", RegisteredAt: testNow.Add(1 * time.Minute)},
			{ID: "a2", EventID: "e1", Email: "b@x.com", RegisteredAt: testNow.Add(2 * time.Minute)},
		}

		page, err := svc.ListAttendees(ctx, "e1", 1, 2)
		require.NoError(t, err)
		require.Equal(t, 3, page.Count)
		require.Len(t, page.Results, 2)
		require.Equal(t, "a1", page.Results[0].ID)
		require.Equal(t, "a2", page.Results[1].ID)

		page, err = svc.ListAttendees(ctx, "e1", 2, 2)
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
		require.Equal(t, "a3", page.Results[0].ID)
	})

	t.Run("event with no attendees returns empty page", func(t *testing.T) {
		store := newMemStore()
		svc := newRegistrationService(store)
		seedEvent(store, "e1", testNow.Add(24*time.Hour), 10)

		page, err := svc.ListAttendees(ctx, "e1", 1, 10)
		require.NoError(t, err)
		require.Equal(t, 0, page.Count)
		require.NotNil(t, page.Results)
		require.Empty(t, page.Results)
	})
}
