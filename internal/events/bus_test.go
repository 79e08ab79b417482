package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/events"
)

type stubStore struct {
	events []events.Event
	err    error
}

func (s *stubStore) InsertDomainEvent(_ context.Context, ev events.Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	bus := events.Bus{
		Store:     store,
		Notifiers: []events.Notifier{notifier},
		Now:       func() time.Time { return fixed },
	}

	event, err := bus.Emit(context.Background(), events.TopicOrderCreated, "ord-1", map[string]any{"orderId": "123"})
	require.NoError(t, err)
	require.Len(t, store.events, 1)
	require.Equal(t, events.TopicOrderCreated, store.events[0].Topic)
	require.JSONEq(t, `{"orderId":"123"}`, string(store.events[0].Payload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)
	require.Equal(t, fixed, event.OccurredAt)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "123", decoded["orderId"])
}

func TestEmitWithoutStoreStillNotifies(t *testing.T) {
	notifier := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{notifier}}
	_, err := bus.Emit(context.Background(), events.TopicSupplierCreated, "7", nil)
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)
	require.JSONEq(t, `{}`, string(notifier.events[0].Payload))
}

func TestEmitValidatesInput(t *testing.T) {
	bus := events.Bus{}
	_, err := bus.Emit(context.Background(), " ", "1", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicOrderCreated, "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicOrderCreated, "1", "{not json")
	require.Error(t, err)
}

func TestEmitStoreFailureSkipsNotifiers(t *testing.T) {
	notifier := &captureNotifier{}
	bus := events.Bus{Store: &stubStore{err: errors.New("down")}, Notifiers: []events.Notifier{notifier}}
	_, err := bus.Emit(context.Background(), events.TopicOrderCreated, "1", nil)
	require.Error(t, err)
	require.Empty(t, notifier.events)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	failing := &captureNotifier{err: errors.New("boom")}
	ok := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{failing, ok}}
	_, err := bus.Emit(context.Background(), events.TopicOrderCreated, "1", nil)
	require.ErrorContains(t, err, "boom")
	require.Len(t, ok.events, 1)
}

func TestLogNotifierWritesTopic(t *testing.T) {
	var buf bytes.Buffer
	bus := events.Bus{Notifiers: []events.Notifier{events.LogNotifier{Logger: zerolog.New(&buf)}, events.MetricsNotifier{}}}
	_, err := bus.Emit(context.Background(), events.TopicComplianceVerified, "item-1", map[string]string{"status": "compliant"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"topic":"compliance.verified"`)
	require.Contains(t, buf.String(), `"status":"compliant"`)
}
