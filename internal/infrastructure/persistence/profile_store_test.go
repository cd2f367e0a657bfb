package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
	"github.com/ecokids/ecokids-hub/internal/infrastructure/persistence/memory"
)

func TestProfileStore_MissingKeyYieldsDefault(t *testing.T) {
	store := NewProfileStore(memory.NewKV(), nil)

	p, err := store.Load(context.Background(), "new-player")
	require.NoError(t, err)

	assert.Equal(t, player.EcoPoints(0), p.EcoPoints)
	assert.Equal(t, player.Level(1), p.Level)
	assert.Empty(t, p.Achievements())
}

func TestProfileStore_RoundTrip(t *testing.T) {
	store := NewProfileStore(memory.NewKV(), nil)
	ctx := context.Background()

	p := player.NewProfile()
	require.NoError(t, p.AddPoints(1010))
	require.NoError(t, p.RecordChallenge(player.CategoryRecycling))
	require.NoError(t, p.RecordChallenge(player.CategoryWildlife))
	p.Unlock(player.AchievementFirstChallenge)
	p.Unlock(player.AchievementPlanetProtector)

	require.NoError(t, store.Save(ctx, "player-1", p))

	loaded, err := store.Load(ctx, "player-1")
	require.NoError(t, err)

	assert.Equal(t, player.EcoPoints(1010), loaded.EcoPoints)
	assert.Equal(t, player.Level(11), loaded.Level)
	assert.Equal(t, 2, loaded.ChallengesCompleted)
	assert.Equal(t, 6, loaded.WasteReduced)
	assert.Equal(t, 2, loaded.TreesPlanted)
	assert.Equal(t, 1, loaded.ChallengeProgress[player.CategoryRecycling])
	assert.Equal(t, p.Achievements(), loaded.Achievements())
	assert.True(t, loaded.UpdatedAt.Equal(p.UpdatedAt))
}

func TestProfileStore_MalformedDocumentYieldsDefault(t *testing.T) {
	kv := memory.NewKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "ecokids:profile:player-1", "{not json"))

	store := NewProfileStore(kv, nil)
	p, err := store.Load(ctx, "player-1")
	require.NoError(t, err, "corrupted storage must not lock the player out")

	assert.Equal(t, player.EcoPoints(0), p.EcoPoints)
	assert.Equal(t, player.Level(1), p.Level)
}

func TestProfileStore_StoredLevelIsRecomputed(t *testing.T) {
	kv := memory.NewKV()
	ctx := context.Background()

	// A tampered document claims level 99 with 250 points.
	doc := `{"eco_points":250,"level":99,"challenges_completed":-3,"achievements":["first-challenge"],"challenge_progress":{"energy":2}}`
	require.NoError(t, kv.Set(ctx, "ecokids:profile:player-1", doc))

	store := NewProfileStore(kv, nil)
	p, err := store.Load(ctx, "player-1")
	require.NoError(t, err)

	assert.Equal(t, player.Level(3), p.Level, "level derives from points")
	assert.Equal(t, 0, p.ChallengesCompleted, "negative counters clamp to zero")
	assert.Equal(t, 2, p.ChallengeProgress[player.CategoryEnergy])
	assert.Equal(t, 0, p.ChallengeProgress[player.CategoryWater], "missing categories are filled in")
	assert.True(t, p.HasAchievement(player.AchievementFirstChallenge))
}

type brokenKV struct{}

func (brokenKV) Get(ctx context.Context, key string) (string, error) {
	return "", assert.AnError
}

func (brokenKV) Set(ctx context.Context, key, value string) error {
	return assert.AnError
}

func TestProfileStore_BackendErrorsWrapPersistence(t *testing.T) {
	store := NewProfileStore(brokenKV{}, nil)
	ctx := context.Background()

	_, err := store.Load(ctx, "player-1")
	assert.ErrorIs(t, err, shared.ErrPersistence)

	err = store.Save(ctx, "player-1", player.NewProfile())
	assert.ErrorIs(t, err, shared.ErrPersistence)
}
