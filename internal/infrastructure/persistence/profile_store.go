// Package persistence implements the profile store: a JSON codec over
// any key-value backend (Redis in production, memory in tests).
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
	"github.com/ecokids/ecokids-hub/pkg/retry"
)

// keyPrefix namespaces profile keys in the shared key-value store.
const keyPrefix = "ecokids:profile:"

// profileDocument is the wire representation of a profile. Achievements
// are a sorted list so documents are byte-stable across saves.
type profileDocument struct {
	EcoPoints           int            `json:"eco_points"`
	Level               int            `json:"level"`
	ChallengesCompleted int            `json:"challenges_completed"`
	TreesPlanted        int            `json:"trees_planted"`
	WasteReduced        int            `json:"waste_reduced"`
	Achievements        []string       `json:"achievements"`
	ChallengeProgress   map[string]int `json:"challenge_progress"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ProfileStore is the player.Store implementation.
type ProfileStore struct {
	kv      player.KeyValue
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewProfileStore creates a profile store over the given backend.
func NewProfileStore(kv player.KeyValue, logger *slog.Logger) *ProfileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileStore{kv: kv, retrier: retry.KVRetrier(), logger: logger}
}

// Load reads a player profile. A missing key or a document that fails
// to decode yields a fresh default profile, never an error: corrupted
// storage must not lock a player out of the game.
func (s *ProfileStore) Load(ctx context.Context, playerKey string) (*player.Profile, error) {
	raw, err := s.kv.Get(ctx, keyPrefix+playerKey)
	if err != nil {
		if errors.Is(err, player.ErrKeyNotFound) {
			return player.NewProfile(), nil
		}
		return nil, shared.NewPersistenceError("load", err)
	}

	var doc profileDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.logger.Warn("discarding malformed profile document",
			"player_key", playerKey,
			"error", err,
		)
		return player.NewProfile(), nil
	}

	return docToProfile(doc), nil
}

// Save serializes and stores the full profile.
func (s *ProfileStore) Save(ctx context.Context, playerKey string, p *player.Profile) error {
	data, err := json.Marshal(profileToDoc(p))
	if err != nil {
		return shared.NewPersistenceError("save", fmt.Errorf("marshal profile: %w", err))
	}

	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		if err := s.kv.Set(ctx, keyPrefix+playerKey, string(data)); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return shared.NewPersistenceError("save", err)
	}
	return nil
}

func profileToDoc(p *player.Profile) profileDocument {
	achievements := make([]string, 0, 4)
	for _, id := range p.Achievements() {
		achievements = append(achievements, string(id))
	}

	progress := make(map[string]int, len(p.ChallengeProgress))
	for c, n := range p.ChallengeProgress {
		progress[string(c)] = n
	}

	return profileDocument{
		EcoPoints:           int(p.EcoPoints),
		Level:               int(p.Level),
		ChallengesCompleted: p.ChallengesCompleted,
		TreesPlanted:        p.TreesPlanted,
		WasteReduced:        p.WasteReduced,
		Achievements:        achievements,
		ChallengeProgress:   progress,
		UpdatedAt:           p.UpdatedAt,
	}
}

// docToProfile rebuilds the aggregate and re-establishes its invariants.
// The stored level is ignored: it is derived state and Normalize
// recomputes it from the points.
func docToProfile(doc profileDocument) *player.Profile {
	p := player.NewProfile()
	p.EcoPoints = player.EcoPoints(doc.EcoPoints)
	p.ChallengesCompleted = doc.ChallengesCompleted
	p.TreesPlanted = doc.TreesPlanted
	p.WasteReduced = doc.WasteReduced
	p.UpdatedAt = doc.UpdatedAt

	ids := make([]player.AchievementID, 0, len(doc.Achievements))
	for _, raw := range doc.Achievements {
		ids = append(ids, player.AchievementID(raw))
	}
	p.SetAchievements(ids)

	p.ChallengeProgress = make(map[player.Category]int, len(doc.ChallengeProgress))
	for c, n := range doc.ChallengeProgress {
		p.ChallengeProgress[player.Category(c)] = n
	}

	p.Normalize()
	return p
}
