package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/session"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

type testStack struct {
	store    *fakeStore
	bus      *captureBus
	registry *SessionRegistry
	start    *StartActivityHandler
	record   *RecordInteractionHandler
	abandon  *AbandonActivityHandler
}

func newTestStack() *testStack {
	store := newFakeStore()
	bus := &captureBus{}
	registry := NewSessionRegistry(DefaultSessionTTL)
	rewards := NewRewardDispatcher(store, bus)
	return &testStack{
		store:    store,
		bus:      bus,
		registry: registry,
		start:    NewStartActivityHandler(registry, bus),
		record:   NewRecordInteractionHandler(registry, rewards),
		abandon:  NewAbandonActivityHandler(registry, bus),
	}
}

func TestStartActivity(t *testing.T) {
	st := newTestStack()

	result, err := st.start.Handle(context.Background(), StartActivityCommand{
		PlayerKey: "player-1",
		Kind:      session.KindRecycling,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, session.VariantMatching, result.Variant)
	assert.Equal(t, 6, result.Target)
	assert.Len(t, result.Items, 4, "four categories on the recycling board")
	assert.Equal(t, 1, st.registry.Len())
	assert.Equal(t, []shared.EventType{shared.EventSessionStarted}, st.bus.types())
}

func TestStartActivity_Quiz(t *testing.T) {
	st := newTestStack()

	result, err := st.start.Handle(context.Background(), StartActivityCommand{
		PlayerKey: "player-1",
		Kind:      session.KindQuiz,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Question)
	assert.Equal(t, 1, result.QuestionNumber)
	assert.Len(t, result.Question.Options, 4)
}

func TestStartActivity_Validation(t *testing.T) {
	st := newTestStack()

	_, err := st.start.Handle(context.Background(), StartActivityCommand{Kind: session.KindQuiz})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = st.start.Handle(context.Background(), StartActivityCommand{
		PlayerKey: "player-1",
		Kind:      session.Kind("memory"),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, 0, st.registry.Len())
}

func TestRecordInteraction_ToggleFlowToCompletion(t *testing.T) {
	st := newTestStack()
	ctx := context.Background()

	started, err := st.start.Handle(ctx, StartActivityCommand{
		PlayerKey: "player-1",
		Kind:      session.KindWater,
	})
	require.NoError(t, err)

	for _, el := range []string{"leak-1", "leak-2", "leak-3", "leak-4"} {
		result, err := st.record.Handle(ctx, RecordInteractionCommand{
			SessionID: started.SessionID,
			Type:      InteractionToggle,
			ElementID: el,
		})
		require.NoError(t, err)
		assert.True(t, result.Accepted)
		assert.False(t, result.Completed)
		assert.Nil(t, result.Reward)
	}

	final, err := st.record.Handle(ctx, RecordInteractionCommand{
		SessionID: started.SessionID,
		Type:      InteractionToggle,
		ElementID: "leak-5",
	})
	require.NoError(t, err)

	assert.True(t, final.Completed)
	require.NotNil(t, final.Reward)
	assert.Equal(t, 35, final.Reward.Points)
	assert.True(t, final.Reward.Persisted)
	assert.Equal(t, final.Reward.Notifications, final.Notifications)

	// A completed session is consumed.
	assert.Equal(t, 0, st.registry.Len())
	_, err = st.record.Handle(ctx, RecordInteractionCommand{
		SessionID: started.SessionID,
		Type:      InteractionToggle,
		ElementID: "leak-1",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecordInteraction_MismatchHint(t *testing.T) {
	st := newTestStack()
	ctx := context.Background()

	started, err := st.start.Handle(ctx, StartActivityCommand{
		PlayerKey: "player-1",
		Kind:      session.KindRecycling,
	})
	require.NoError(t, err)

	result, err := st.record.Handle(ctx, RecordInteractionCommand{
		SessionID:    started.SessionID,
		Type:         InteractionMatch,
		ItemCategory: "paper",
		ZoneCategory: "glass",
	})
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, 0, result.Count)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, shared.NotificationError, result.Notifications[0].Kind)
	assert.Equal(t, "Try again! That item belongs in a different bin.", result.Notifications[0].Message)
}

func TestRecordInteraction_DomainErrorsPassThrough(t *testing.T) {
	st := newTestStack()
	ctx := context.Background()

	started, err := st.start.Handle(ctx, StartActivityCommand{
		PlayerKey: "player-1",
		Kind:      session.KindEnergy,
	})
	require.NoError(t, err)

	_, err = st.record.Handle(ctx, RecordInteractionCommand{
		SessionID: started.SessionID,
		Type:      InteractionToggle,
		ElementID: "microwave",
	})
	assert.ErrorIs(t, err, session.ErrUnknownElement)

	_, err = st.record.Handle(ctx, RecordInteractionCommand{
		SessionID: started.SessionID,
		Type:      InteractionAnswer,
	})
	assert.ErrorIs(t, err, session.ErrWrongVariant)

	_, err = st.record.Handle(ctx, RecordInteractionCommand{
		SessionID: "no-such-session",
		Type:      InteractionToggle,
		ElementID: "light",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecordInteraction_QuizAdvancesQuestions(t *testing.T) {
	st := newTestStack()
	ctx := context.Background()

	started, err := st.start.Handle(ctx, StartActivityCommand{
		PlayerKey: "player-1",
		Kind:      session.KindQuiz,
	})
	require.NoError(t, err)

	first, err := st.record.Handle(ctx, RecordInteractionCommand{
		SessionID:   started.SessionID,
		Type:        InteractionAnswer,
		OptionIndex: 1,
	})
	require.NoError(t, err)
	assert.True(t, first.Correct)
	require.NotNil(t, first.Question)
	assert.Equal(t, 2, first.QuestionNumber)

	for _, answer := range []int{0, 3} {
		last, err := st.record.Handle(ctx, RecordInteractionCommand{
			SessionID:   started.SessionID,
			Type:        InteractionAnswer,
			OptionIndex: answer,
		})
		require.NoError(t, err)
		if last.Completed {
			require.NotNil(t, last.Reward)
			assert.Equal(t, 40, last.Reward.Points, "two correct of three")
			assert.Nil(t, last.Question)
		}
	}
}

func TestAbandonActivity(t *testing.T) {
	st := newTestStack()
	ctx := context.Background()

	started, err := st.start.Handle(ctx, StartActivityCommand{
		PlayerKey: "player-1",
		Kind:      session.KindWildlife,
	})
	require.NoError(t, err)

	_, err = st.record.Handle(ctx, RecordInteractionCommand{
		SessionID:    started.SessionID,
		Type:         InteractionMatch,
		ItemCategory: "bird",
		ZoneCategory: "bird",
	})
	require.NoError(t, err)

	require.NoError(t, st.abandon.Handle(ctx, AbandonActivityCommand{SessionID: started.SessionID}))
	assert.Equal(t, 0, st.registry.Len())

	// No profile side effects from an abandoned session.
	profile, err := st.store.Load(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, player.EcoPoints(0), profile.EcoPoints)
	assert.Equal(t, 0, profile.ChallengesCompleted)

	types := st.bus.types()
	assert.Equal(t, shared.EventSessionAbandoned, types[len(types)-1])

	assert.ErrorIs(t,
		st.abandon.Handle(ctx, AbandonActivityCommand{SessionID: started.SessionID}),
		shared.ErrNotFound)
}

func TestResetProfile(t *testing.T) {
	store := newFakeStore()
	bus := &captureBus{}
	ctx := context.Background()

	seed := player.NewProfile()
	require.NoError(t, seed.AddPoints(500))
	seed.Unlock(player.AchievementFirstChallenge)
	require.NoError(t, store.Save(ctx, "player-1", seed))

	h := NewResetProfileHandler(store, bus)
	result, err := h.Handle(ctx, ResetProfileCommand{PlayerKey: "player-1"})
	require.NoError(t, err)

	assert.True(t, result.Persisted)
	assert.Equal(t, player.EcoPoints(0), result.Profile.EcoPoints)
	assert.Equal(t, player.Level(1), result.Profile.Level)
	assert.Empty(t, result.Profile.Achievements())

	saved, err := store.Load(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, player.EcoPoints(0), saved.EcoPoints)
	assert.False(t, saved.HasAchievement(player.AchievementFirstChallenge))

	assert.Equal(t, []shared.EventType{shared.EventProfileReset}, bus.types())
}

func TestSessionRegistry_Sweep(t *testing.T) {
	registry := NewSessionRegistry(time.Minute)

	fresh, err := session.New("fresh", "player-1", session.KindEnergy)
	require.NoError(t, err)
	registry.Put(fresh)

	stale, err := session.New("stale", "player-1", session.KindWater)
	require.NoError(t, err)
	stale.LastActivityAt = time.Now().UTC().Add(-2 * time.Minute)
	registry.Put(stale)

	done, err := session.New("done", "player-1", session.KindQuiz)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := done.RecordAnswer(0)
		require.NoError(t, err)
	}
	registry.Put(done)

	assert.Equal(t, 2, registry.Sweep())
	assert.Equal(t, 1, registry.Len())
	assert.NoError(t, registry.With("fresh", func(*session.Session) error { return nil }))
	assert.ErrorIs(t, registry.With("stale", func(*session.Session) error { return nil }), shared.ErrNotFound)
}

func TestSessionRegistry_SweeperStopsOnCancel(t *testing.T) {
	registry := NewSessionRegistry(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	// StartSweeper blocks until the context is cancelled, so the
	// composition root must run it on its own goroutine.
	done := make(chan struct{})
	go func() {
		registry.StartSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	stale, err := session.New("stale", "player-1", session.KindWater)
	require.NoError(t, err)
	stale.LastActivityAt = time.Now().UTC().Add(-2 * time.Minute)
	registry.Put(stale)

	assert.Eventually(t, func() bool { return registry.Len() == 0 },
		time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not return after context cancellation")
	}
}
