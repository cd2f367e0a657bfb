package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecokids/ecokids-hub/internal/domain/session"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// START ACTIVITY COMMAND
// Launches a challenge or game: creates a fresh session with full
// in-session state and registers it for interaction commands.
// ══════════════════════════════════════════════════════════════════════════════

// StartActivityCommand contains the data to launch an activity.
type StartActivityCommand struct {
	// PlayerKey identifies the owning player profile.
	PlayerKey string

	// Kind is the activity to launch.
	Kind session.Kind
}

// Validate validates the command.
func (c StartActivityCommand) Validate() error {
	if c.PlayerKey == "" {
		return shared.NewValidationError("player_key", "is required")
	}
	if !c.Kind.IsValid() {
		return shared.NewValidationError("kind", fmt.Sprintf("unknown activity kind %q", c.Kind))
	}
	return nil
}

// StartActivityResult describes the freshly created session.
type StartActivityResult struct {
	// SessionID is the handle for all further interactions.
	SessionID string

	// Kind and Variant describe the activity.
	Kind    session.Kind
	Variant session.Variant

	// Target is the completion threshold; Count starts at zero.
	Target int

	// Items lists the board for matching variants.
	Items []session.ItemCount

	// Question and QuestionNumber are set for the quiz variant.
	Question       *session.QuizQuestion
	QuestionNumber int
}

// StartActivityHandler handles the StartActivityCommand.
type StartActivityHandler struct {
	registry  *SessionRegistry
	publisher shared.EventPublisher
}

// NewStartActivityHandler creates a new StartActivityHandler.
func NewStartActivityHandler(registry *SessionRegistry, publisher shared.EventPublisher) *StartActivityHandler {
	return &StartActivityHandler{
		registry:  registry,
		publisher: publisher,
	}
}

// Handle executes the start activity command.
func (h *StartActivityHandler) Handle(ctx context.Context, cmd StartActivityCommand) (*StartActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("start_activity: %w", err)
	}

	s, err := session.New(uuid.NewString(), cmd.PlayerKey, cmd.Kind)
	if err != nil {
		return nil, fmt.Errorf("start_activity: %w", err)
	}

	h.registry.Put(s)
	_ = h.publisher.Publish(shared.NewSessionStartedEvent(s.ID, s.PlayerKey, string(s.Kind)))

	result := &StartActivityResult{
		SessionID: s.ID,
		Kind:      s.Kind,
		Variant:   session.VariantOf(s.Kind),
		Target:    s.Target,
		Items:     s.RemainingItems(),
	}
	if q, ok := s.CurrentQuestion(); ok {
		result.Question = &q
		result.QuestionNumber = s.QuestionNumber()
	}

	return result, nil
}
