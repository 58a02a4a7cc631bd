package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
)

func TestDispatcherPublishReachesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventSignedIn, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	err := d.Publish(context.Background(), Event{
		Type:    EventSignedIn,
		Origin:  OriginLocal,
		Session: domain.Session{UserID: "u1", Authenticated: true},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].Session.UserID)
}

func TestDispatcherTypeIsolation(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventSignedOut, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventSignedIn}))
	assert.Zero(t, calls)
}

func TestDispatcherUnsubscribe(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	unsubscribe := d.Subscribe(EventSignedUp, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventSignedUp}))
	unsubscribe()
	unsubscribe() // repeated calls are harmless
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventSignedUp}))

	assert.Equal(t, 1, calls)
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()

	d.Subscribe(EventSignedIn, func(context.Context, Event) error {
		return errors.New("handler failed")
	})
	reached := false
	d.Subscribe(EventSignedIn, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventSignedIn}))
	assert.True(t, reached)
}
