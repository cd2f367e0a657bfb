package messaging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

func TestInMemoryEventBus_DeliversInOrder(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	var seen []shared.EventType
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		seen = append(seen, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewPointsGainedEvent("p1", 40, 40, "activity:energy")))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("p1", 1, 2)))
	require.NoError(t, bus.Publish(shared.NewAchievementUnlockedEvent("p1", "first-challenge")))

	assert.Equal(t, []shared.EventType{
		shared.EventPointsGained,
		shared.EventLevelUp,
		shared.EventAchievementNew,
	}, seen)
}

func TestInMemoryEventBus_TypedSubscription(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	levelUps := 0
	require.NoError(t, bus.Subscribe(shared.EventLevelUp, func(e shared.Event) error {
		levelUps++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("p1", 1, 2)))
	require.NoError(t, bus.Publish(shared.NewPointsGainedEvent("p1", 40, 40, "activity:energy")))

	assert.Equal(t, 1, levelUps)
}

func TestInMemoryEventBus_HandlerErrorDoesNotPropagate(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		return errors.New("subscriber broke")
	}))

	delivered := false
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		delivered = true
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewProfileResetEvent("p1")))
	assert.True(t, delivered, "later handlers still run")
}

func TestInMemoryEventBus_Close(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewProfileResetEvent("p1")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.NoError(t, bus.Close(), "second close is a no-op")
}
