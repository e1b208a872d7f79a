package events

import (
	"context"
	"errors"
	"testing"

	"homeward/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDispatchesToSubscribersInOrder(t *testing.T) {
	bus := New(nil)

	var order []string
	bus.Subscribe(EventPropertyCreated, func(ctx context.Context, event Event) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe(EventPropertyCreated, func(ctx context.Context, event Event) error {
		order = append(order, "second")
		return nil
	})
	bus.Subscribe(EventStageChanged, func(ctx context.Context, event Event) error {
		order = append(order, "unrelated")
		return nil
	})

	err := bus.Publish(context.Background(), EventPropertyCreated, PropertyCreatedPayload{
		PropertyID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishRunsAllHandlersAndJoinsErrors(t *testing.T) {
	bus := New(nil)

	errBoom := errors.New("boom")
	var secondRan bool
	bus.Subscribe(EventMatchCreated, func(ctx context.Context, event Event) error {
		return errBoom
	})
	bus.Subscribe(EventMatchCreated, func(ctx context.Context, event Event) error {
		secondRan = true
		return nil
	})

	err := bus.Publish(context.Background(), EventMatchCreated, MatchCreatedPayload{
		SearchID:   uuid.New(),
		PropertyID: uuid.New(),
		Score:      85,
	})
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, secondRan, "a failing handler must not block later handlers")
}

func TestPayloadRoundTrip(t *testing.T) {
	bus := New(nil)

	searchID := uuid.New()
	var received StageChangedPayload
	bus.Subscribe(EventStageChanged, func(ctx context.Context, event Event) error {
		return event.Decode(&received)
	})

	err := bus.Publish(context.Background(), EventStageChanged, StageChangedPayload{
		SearchID: searchID,
		OldStage: models.StageAwaitingAgreements,
		NewStage: models.StageSearching,
	})
	require.NoError(t, err)

	assert.Equal(t, searchID, received.SearchID)
	assert.Equal(t, models.StageAwaitingAgreements, received.OldStage)
	assert.Equal(t, models.StageSearching, received.NewStage)
}

func TestPublishWithNoSubscribersSucceeds(t *testing.T) {
	bus := New(nil)
	err := bus.Publish(context.Background(), EventPreferencesUpdated, PreferencesUpdatedPayload{
		SearchID: uuid.New(),
	})
	assert.NoError(t, err)
}
