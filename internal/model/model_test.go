package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventDerivedHelpers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	e := Event{MaxCapacity: 2, StartTime: now.Add(time.Hour)}
	require.False(t, e.IsFull())
	require.Equal(t, 2, e.Remaining())
	require.True(t, e.IsUpcoming(now))

	e.CurrentAttendees = 2
	require.True(t, e.IsFull())
	require.Equal(t, 0, e.Remaining())

	// Remaining never goes negative.
	e.CurrentAttendees = 3
	require.Equal(t, 0, e.Remaining())

	e.StartTime = now
	require.False(t, e.IsUpcoming(now))
	e.StartTime = now.Add(-time.Minute)
	require.False(t, e.IsUpcoming(now))
}

func TestUpdateEventRequestTouchesTimeWindow(t *testing.T) {
	name := "Renamed"
	ts := time.Now()

	require.False(t, UpdateEventRequest{Name: &name}.TouchesTimeWindow())
	require.True(t, UpdateEventRequest{StartTime: &ts}.TouchesTimeWindow())
	require.True(t, UpdateEventRequest{EndTime: &ts}.TouchesTimeWindow())
}
