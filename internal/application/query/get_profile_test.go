package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

type stubStore struct {
	profile *player.Profile
}

func (s *stubStore) Load(ctx context.Context, playerKey string) (*player.Profile, error) {
	if s.profile != nil {
		return s.profile.Clone(), nil
	}
	return player.NewProfile(), nil
}

func (s *stubStore) Save(ctx context.Context, playerKey string, p *player.Profile) error {
	s.profile = p.Clone()
	return nil
}

func TestGetProfile_FreshPlayer(t *testing.T) {
	h := NewGetProfileHandler(&stubStore{})

	dto, err := h.Handle(context.Background(), GetProfileQuery{PlayerKey: "player-1"})
	require.NoError(t, err)

	assert.Equal(t, 0, dto.EcoPoints)
	assert.Equal(t, 1, dto.Level)
	assert.Equal(t, 0, dto.PointsIntoLevel)
	assert.Equal(t, 100, dto.PointsToNextLevel)

	require.Len(t, dto.Achievements, 4)
	for _, a := range dto.Achievements {
		assert.False(t, a.Unlocked)
		assert.NotEmpty(t, a.Name)
	}

	require.Len(t, dto.Progress, 4)
	assert.Equal(t, player.CategoryRecycling, dto.Progress[0].Category)
	assert.Equal(t, 10, dto.Progress[0].Target)
	assert.Equal(t, 0, dto.Progress[0].Percent)
}

func TestGetProfile_ProgressedPlayer(t *testing.T) {
	p := player.NewProfile()
	require.NoError(t, p.AddPoints(275))
	for i := 0; i < 4; i++ {
		require.NoError(t, p.RecordChallenge(player.CategoryEnergy))
	}
	p.Unlock(player.AchievementFirstChallenge)

	h := NewGetProfileHandler(&stubStore{profile: p})
	dto, err := h.Handle(context.Background(), GetProfileQuery{PlayerKey: "player-1"})
	require.NoError(t, err)

	assert.Equal(t, 275, dto.EcoPoints)
	assert.Equal(t, 3, dto.Level)
	assert.Equal(t, 75, dto.PointsIntoLevel)
	assert.Equal(t, 25, dto.PointsToNextLevel)
	assert.Equal(t, 4, dto.ChallengesCompleted)

	assert.True(t, dto.Achievements[0].Unlocked, "first-challenge")
	assert.False(t, dto.Achievements[3].Unlocked, "planet-protector")

	// Energy: 4 of 8 on the display bar.
	assert.Equal(t, player.CategoryEnergy, dto.Progress[1].Category)
	assert.Equal(t, 4, dto.Progress[1].Count)
	assert.Equal(t, 50, dto.Progress[1].Percent)
}

func TestGetProfile_Validation(t *testing.T) {
	h := NewGetProfileHandler(&stubStore{})
	_, err := h.Handle(context.Background(), GetProfileQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
