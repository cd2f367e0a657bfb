package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/session"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REWARD DISPATCHER
// Runs the single write path into the player profile. Every completed
// session funnels through Dispatch: points, category counters, derived
// stats, achievement evaluation, persistence, events, and the ordered
// notification list all happen here and nowhere else.
// ══════════════════════════════════════════════════════════════════════════════

// RewardResult describes the outcome of dispatching a completion reward.
type RewardResult struct {
	// Points is the amount credited for this completion.
	Points int

	// Profile is the post-mutation profile snapshot.
	Profile *player.Profile

	// Unlocked lists achievements unlocked by this completion, in
	// evaluation order.
	Unlocked []player.AchievementID

	// Notifications is the ordered user-facing message list: completion
	// first, then a level-up if the level changed, then one entry per
	// unlock.
	Notifications []shared.Notification

	// Persisted is false when the profile save failed. The in-memory
	// mutation is kept either way; the next successful save captures it.
	Persisted bool
}

// RewardDispatcher applies completion rewards to player profiles.
type RewardDispatcher struct {
	store     player.Store
	publisher shared.EventPublisher
	logger    *slog.Logger

	// mu serializes the load-mutate-save cycle. Rewards are rare enough
	// that a single lock is sufficient.
	mu sync.Mutex
}

// NewRewardDispatcher creates a reward dispatcher.
func NewRewardDispatcher(store player.Store, publisher shared.EventPublisher) *RewardDispatcher {
	return &RewardDispatcher{
		store:     store,
		publisher: publisher,
		logger:    slog.Default(),
	}
}

// Dispatch credits the reward of a completed session to its player.
// The session must be in the completed state.
func (d *RewardDispatcher) Dispatch(ctx context.Context, s *session.Session) (*RewardResult, error) {
	if s.State != session.StateCompleted {
		return nil, fmt.Errorf("reward: session %s is %s: %w", s.ID, s.State, shared.ErrInvalidTransition)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	profile, err := d.store.Load(ctx, s.PlayerKey)
	if err != nil {
		return nil, fmt.Errorf("reward: load profile: %w", err)
	}

	points := s.RewardPoints()
	oldLevel := profile.Level

	if err := profile.AddPoints(player.EcoPoints(points)); err != nil {
		return nil, fmt.Errorf("reward: add points: %w", err)
	}

	if s.Kind.IsChallenge() {
		if err := profile.RecordChallenge(player.Category(s.Kind)); err != nil {
			return nil, fmt.Errorf("reward: record challenge: %w", err)
		}
	}

	// Achievements are evaluated against the fully mutated profile, so a
	// single completion can unlock several at once.
	unlocked := player.EvaluateAchievements(profile)
	for _, id := range unlocked {
		profile.Unlock(id)
	}

	result := &RewardResult{
		Points:        points,
		Profile:       profile,
		Unlocked:      unlocked,
		Notifications: buildNotifications(s, points, oldLevel, profile.Level, unlocked),
		Persisted:     true,
	}

	// A failed save is recoverable: the mutated profile stays authoritative
	// in memory and the caller is told via the Persisted flag. The next
	// reward reloads from the store, so the credited points are lost once
	// the response is consumed; log it so droppage is visible.
	if err := d.store.Save(ctx, s.PlayerKey, profile); err != nil {
		result.Persisted = false
		d.logger.Warn("profile save failed, reward kept in memory only",
			"player_key", s.PlayerKey,
			"kind", string(s.Kind),
			"points", points,
			"error", err,
		)
	}

	d.publishRewardEvents(s, points, oldLevel, profile, unlocked)

	return result, nil
}

// buildNotifications assembles the fixed-order notification list for a
// completion.
func buildNotifications(
	s *session.Session,
	points int,
	oldLevel, newLevel player.Level,
	unlocked []player.AchievementID,
) []shared.Notification {
	notifications := make([]shared.Notification, 0, 2+len(unlocked))

	if s.Kind.IsChallenge() {
		notifications = append(notifications, shared.SuccessNotification(
			fmt.Sprintf("🎉 Challenge completed! You earned %d Eco Points!", points)))
	} else {
		notifications = append(notifications, shared.SuccessNotification(
			fmt.Sprintf("🎮 Great job! You earned %d Eco Points!", points)))
	}

	if newLevel > oldLevel {
		notifications = append(notifications, shared.SuccessNotification(
			fmt.Sprintf("🎊 Level Up! You're now level %d!", newLevel)))
	}

	for _, id := range unlocked {
		def, ok := player.GetAchievementDefinition(id)
		if !ok {
			continue
		}
		notifications = append(notifications, shared.SuccessNotification(
			fmt.Sprintf("🏅 Achievement Unlocked: %s!", def.Name)))
	}

	return notifications
}

// publishRewardEvents emits the domain events of a completion in the
// same order as the notifications.
func (d *RewardDispatcher) publishRewardEvents(
	s *session.Session,
	points int,
	oldLevel player.Level,
	profile *player.Profile,
	unlocked []player.AchievementID,
) {
	if s.Kind.IsChallenge() {
		_ = d.publisher.Publish(shared.NewChallengeCompletedEvent(s.PlayerKey, string(s.Kind), points))
	} else {
		_ = d.publisher.Publish(shared.NewGameCompletedEvent(s.PlayerKey, string(s.Kind), points))
	}

	_ = d.publisher.Publish(shared.NewPointsGainedEvent(
		s.PlayerKey, points, int(profile.EcoPoints), "activity:"+string(s.Kind)))

	if profile.Level > oldLevel {
		_ = d.publisher.Publish(shared.NewLevelUpEvent(s.PlayerKey, int(oldLevel), int(profile.Level)))
	}

	for _, id := range unlocked {
		_ = d.publisher.Publish(shared.NewAchievementUnlockedEvent(s.PlayerKey, string(id)))
	}
}
