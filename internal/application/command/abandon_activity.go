package command

import (
	"context"
	"fmt"

	"github.com/ecokids/ecokids-hub/internal/domain/session"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ABANDON ACTIVITY COMMAND
// The player closed the activity before finishing it. The session is
// discarded without any profile side effects: no points, no counters.
// ══════════════════════════════════════════════════════════════════════════════

// AbandonActivityCommand contains the session to abandon.
type AbandonActivityCommand struct {
	SessionID string
}

// Validate validates the command.
func (c AbandonActivityCommand) Validate() error {
	if c.SessionID == "" {
		return shared.NewValidationError("session_id", "is required")
	}
	return nil
}

// AbandonActivityHandler handles the AbandonActivityCommand.
type AbandonActivityHandler struct {
	registry  *SessionRegistry
	publisher shared.EventPublisher
}

// NewAbandonActivityHandler creates a new AbandonActivityHandler.
func NewAbandonActivityHandler(registry *SessionRegistry, publisher shared.EventPublisher) *AbandonActivityHandler {
	return &AbandonActivityHandler{
		registry:  registry,
		publisher: publisher,
	}
}

// Handle executes the abandon activity command.
func (h *AbandonActivityHandler) Handle(ctx context.Context, cmd AbandonActivityCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("abandon_activity: %w", err)
	}

	var abandoned *session.Session
	err := h.registry.With(cmd.SessionID, func(s *session.Session) error {
		if err := s.Abandon(); err != nil {
			return err
		}
		abandoned = s
		return nil
	})
	if err != nil {
		return fmt.Errorf("abandon_activity: %w", err)
	}

	h.registry.Remove(abandoned.ID)
	_ = h.publisher.Publish(shared.NewSessionAbandonedEvent(
		abandoned.ID, abandoned.PlayerKey, string(abandoned.Kind), abandoned.Count))

	return nil
}
