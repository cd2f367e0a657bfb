package command

import (
	"context"
	"fmt"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESET PROFILE COMMAND
// Administrative operation: returns a profile to the factory state.
// The only path that decreases points or removes achievements.
// ══════════════════════════════════════════════════════════════════════════════

// ResetProfileCommand contains the profile to reset.
type ResetProfileCommand struct {
	PlayerKey string
}

// Validate validates the command.
func (c ResetProfileCommand) Validate() error {
	if c.PlayerKey == "" {
		return shared.NewValidationError("player_key", "is required")
	}
	return nil
}

// ResetProfileResult describes the outcome of a reset.
type ResetProfileResult struct {
	// Profile is the fresh post-reset profile.
	Profile *player.Profile

	// Persisted is false when the save failed; the reset still applies
	// to the returned snapshot.
	Persisted bool
}

// ResetProfileHandler handles the ResetProfileCommand.
type ResetProfileHandler struct {
	store     player.Store
	publisher shared.EventPublisher
}

// NewResetProfileHandler creates a new ResetProfileHandler.
func NewResetProfileHandler(store player.Store, publisher shared.EventPublisher) *ResetProfileHandler {
	return &ResetProfileHandler{
		store:     store,
		publisher: publisher,
	}
}

// Handle executes the reset profile command.
func (h *ResetProfileHandler) Handle(ctx context.Context, cmd ResetProfileCommand) (*ResetProfileResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("reset_profile: %w", err)
	}

	profile := player.NewProfile()
	result := &ResetProfileResult{
		Profile:   profile,
		Persisted: true,
	}

	if err := h.store.Save(ctx, cmd.PlayerKey, profile); err != nil {
		result.Persisted = false
	}

	_ = h.publisher.Publish(shared.NewProfileResetEvent(cmd.PlayerKey))

	return result, nil
}
