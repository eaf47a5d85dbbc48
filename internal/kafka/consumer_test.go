package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	event := PickupEvent{
		ID:        "ev-1",
		Type:      EventAssignmentChanged,
		BookingID: "b1",
		DateKey:   "2026-03-20",
		GuideID:   "g1",
		GuideName: "Kari",
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var got []PickupEvent
	handler := func(ctx context.Context, e PickupEvent) error {
		got = append(got, e)
		return nil
	}

	err = dispatch(context.Background(), kafka.Message{Value: payload}, handler)

	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, event, got[0])
}

func TestDispatch_SkipsUndecodableMessage(t *testing.T) {
	called := false
	handler := func(ctx context.Context, e PickupEvent) error {
		called = true
		return nil
	}

	err := dispatch(context.Background(), kafka.Message{Value: []byte("not json")}, handler)

	assert.NoError(t, err, "a bad payload must not stop the consume loop")
	assert.False(t, called, "the handler must never see an undecoded event")
}

func TestDispatch_HandlerErrorPropagates(t *testing.T) {
	handlerErr := errors.New("notify failed")
	handler := func(ctx context.Context, e PickupEvent) error {
		return handlerErr
	}

	payload, err := json.Marshal(PickupEvent{ID: "ev-1"})
	require.NoError(t, err)

	err = dispatch(context.Background(), kafka.Message{Value: payload}, handler)

	assert.ErrorIs(t, err, handlerErr)
}
