package command

import (
	"context"
	"fmt"

	"github.com/ecokids/ecokids-hub/internal/domain/session"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD INTERACTION COMMAND
// Feeds one qualifying player interaction into an open session. When the
// interaction completes the session, the reward is dispatched in the
// same call and the session is discarded.
// ══════════════════════════════════════════════════════════════════════════════

// InteractionType selects which session transition a command performs.
type InteractionType string

const (
	// InteractionMatch - an item dropped onto a zone (recycling, wildlife).
	InteractionMatch InteractionType = "match"

	// InteractionToggle - a click on an addressable element (energy, water).
	InteractionToggle InteractionType = "toggle"

	// InteractionAnswer - a quiz option pick.
	InteractionAnswer InteractionType = "answer"
)

// RecordInteractionCommand contains one interaction with an open session.
type RecordInteractionCommand struct {
	// SessionID is the session handle from StartActivity.
	SessionID string

	// Type selects the transition; the payload fields below are
	// type-specific.
	Type InteractionType

	// ItemCategory and ZoneCategory are used for match interactions.
	ItemCategory string
	ZoneCategory string

	// ElementID is used for toggle interactions.
	ElementID string

	// OptionIndex is used for answer interactions.
	OptionIndex int
}

// Validate validates the command.
func (c RecordInteractionCommand) Validate() error {
	if c.SessionID == "" {
		return shared.NewValidationError("session_id", "is required")
	}

	switch c.Type {
	case InteractionMatch:
		if c.ItemCategory == "" {
			return shared.NewValidationError("item_category", "is required for match")
		}
		if c.ZoneCategory == "" {
			return shared.NewValidationError("zone_category", "is required for match")
		}
	case InteractionToggle:
		if c.ElementID == "" {
			return shared.NewValidationError("element_id", "is required for toggle")
		}
	case InteractionAnswer:
		// The option index is range-checked by the session itself.
	default:
		return shared.NewValidationError("type", fmt.Sprintf("unknown interaction type %q", c.Type))
	}

	return nil
}

// RecordInteractionResult describes the effect of one interaction.
type RecordInteractionResult struct {
	// Accepted, Correct, and Completed mirror the session outcome.
	Accepted  bool
	Correct   bool
	Completed bool

	// Count and Target are the post-interaction progress.
	Count  int
	Target int

	// Items is the remaining board for matching variants; Addressed is
	// the set of elements already handled for toggle variants.
	Items     []session.ItemCount
	Addressed []string

	// Notifications holds the mismatch hint, or the full reward list
	// when this interaction completed the session.
	Notifications []shared.Notification

	// Reward is set only when Completed is true.
	Reward *RewardResult

	// Question and QuestionNumber are the next quiz question, if any.
	Question       *session.QuizQuestion
	QuestionNumber int
}

// RecordInteractionHandler handles the RecordInteractionCommand.
type RecordInteractionHandler struct {
	registry *SessionRegistry
	rewards  *RewardDispatcher
}

// NewRecordInteractionHandler creates a new RecordInteractionHandler.
func NewRecordInteractionHandler(registry *SessionRegistry, rewards *RewardDispatcher) *RecordInteractionHandler {
	return &RecordInteractionHandler{
		registry: registry,
		rewards:  rewards,
	}
}

// Handle executes the record interaction command.
func (h *RecordInteractionHandler) Handle(ctx context.Context, cmd RecordInteractionCommand) (*RecordInteractionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_interaction: %w", err)
	}

	var (
		result    *RecordInteractionResult
		completed *session.Session
	)

	err := h.registry.With(cmd.SessionID, func(s *session.Session) error {
		out, err := h.apply(s, cmd)
		if err != nil {
			return err
		}

		result = &RecordInteractionResult{
			Accepted:  out.Accepted,
			Correct:   out.Correct,
			Completed: out.Completed,
			Count:     s.Count,
			Target:    s.Target,
			Items:     s.RemainingItems(),
			Addressed: s.AddressedElements(),
		}
		if out.Hint != "" {
			result.Notifications = []shared.Notification{shared.ErrorNotification(out.Hint)}
		}
		if q, ok := s.CurrentQuestion(); ok {
			result.Question = &q
			result.QuestionNumber = s.QuestionNumber()
		}
		if out.Completed {
			completed = s
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record_interaction: %w", err)
	}

	// The reward runs outside the registry lock: session state is
	// terminal by now and nothing else will touch it.
	if completed != nil {
		reward, err := h.rewards.Dispatch(ctx, completed)
		if err != nil {
			return nil, fmt.Errorf("record_interaction: %w", err)
		}
		h.registry.Remove(completed.ID)
		result.Reward = reward
		result.Notifications = append(result.Notifications, reward.Notifications...)
	}

	return result, nil
}

// apply routes the command to the matching session transition.
func (h *RecordInteractionHandler) apply(s *session.Session, cmd RecordInteractionCommand) (session.Outcome, error) {
	switch cmd.Type {
	case InteractionMatch:
		return s.RecordMatch(cmd.ItemCategory, cmd.ZoneCategory)
	case InteractionToggle:
		return s.RecordToggle(cmd.ElementID)
	default:
		return s.RecordAnswer(cmd.OptionIndex)
	}
}
