package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ecokids/ecokids-hub/internal/application/command"
	"github.com/ecokids/ecokids-hub/internal/application/query"
	"github.com/ecokids/ecokids-hub/internal/domain/session"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
	"github.com/ecokids/ecokids-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / RESPONSE DTOS
// ══════════════════════════════════════════════════════════════════════════════

type startActivityRequest struct {
	PlayerKey string `json:"player_key"`
	Kind      string `json:"kind"`
}

type matchRequest struct {
	ItemCategory string `json:"item_category"`
	ZoneCategory string `json:"zone_category"`
}

type toggleRequest struct {
	ElementID string `json:"element_id"`
}

type answerRequest struct {
	OptionIndex int `json:"option_index"`
}

type resetProfileRequest struct {
	PlayerKey string `json:"player_key"`
}

type sessionResponse struct {
	SessionID      string                `json:"session_id,omitempty"`
	Kind           string                `json:"kind,omitempty"`
	Variant        string                `json:"variant,omitempty"`
	Count          int                   `json:"count"`
	Target         int                   `json:"target"`
	Accepted       *bool                 `json:"accepted,omitempty"`
	Correct        *bool                 `json:"correct,omitempty"`
	Completed      bool                  `json:"completed"`
	Items          []session.ItemCount   `json:"items,omitempty"`
	Addressed      []string              `json:"addressed,omitempty"`
	Question       *session.QuizQuestion `json:"question,omitempty"`
	QuestionNumber int                   `json:"question_number,omitempty"`
	Notifications  []shared.Notification `json:"notifications,omitempty"`
	Reward         *rewardResponse       `json:"reward,omitempty"`
}

type rewardResponse struct {
	Points    int               `json:"points"`
	Unlocked  []string          `json:"unlocked"`
	Persisted bool              `json:"persisted"`
	Profile   *query.ProfileDTO `json:"profile"`
}

type resetProfileResponse struct {
	Profile   *query.ProfileDTO `json:"profile"`
	Persisted bool              `json:"persisted"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    s.Uptime().String(),
	})
}

// handleReady handles GET /ready. Ready means the profile backend
// answers; game traffic is pointless without it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Readiness != nil {
		if err := s.deps.Readiness(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", logger.Err(err))
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Profile storage is unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles GET /live.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleRoot handles GET /.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "ecokids-hub",
		"version": "1.0.0",
		"endpoints": []string{
			"POST /api/v1/activities",
			"POST /api/v1/activities/{id}/match",
			"POST /api/v1/activities/{id}/toggle",
			"POST /api/v1/activities/{id}/answer",
			"DELETE /api/v1/activities/{id}",
			"GET /api/v1/profile",
			"GET /api/v1/tips/random",
			"GET /api/v1/content/{topic}",
			"GET /ws/notifications",
		},
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleStartActivity handles POST /api/v1/activities.
func (s *Server) handleStartActivity(w http.ResponseWriter, r *http.Request) {
	var req startActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.StartActivity.Handle(r.Context(), command.StartActivityCommand{
		PlayerKey: req.PlayerKey,
		Kind:      session.Kind(req.Kind),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:      result.SessionID,
		Kind:           string(result.Kind),
		Variant:        string(result.Variant),
		Target:         result.Target,
		Items:          result.Items,
		Question:       result.Question,
		QuestionNumber: result.QuestionNumber,
	})
}

// handleMatch handles POST /api/v1/activities/{id}/match.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.recordInteraction(w, r, command.RecordInteractionCommand{
		SessionID:    r.PathValue("id"),
		Type:         command.InteractionMatch,
		ItemCategory: req.ItemCategory,
		ZoneCategory: req.ZoneCategory,
	})
}

// handleToggle handles POST /api/v1/activities/{id}/toggle.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.recordInteraction(w, r, command.RecordInteractionCommand{
		SessionID: r.PathValue("id"),
		Type:      command.InteractionToggle,
		ElementID: req.ElementID,
	})
}

// handleAnswer handles POST /api/v1/activities/{id}/answer.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.recordInteraction(w, r, command.RecordInteractionCommand{
		SessionID:   r.PathValue("id"),
		Type:        command.InteractionAnswer,
		OptionIndex: req.OptionIndex,
	})
}

// recordInteraction runs one interaction command and writes the shared
// session response shape.
func (s *Server) recordInteraction(w http.ResponseWriter, r *http.Request, cmd command.RecordInteractionCommand) {
	result, err := s.deps.RecordInteraction.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := sessionResponse{
		Count:          result.Count,
		Target:         result.Target,
		Items:          result.Items,
		Addressed:      result.Addressed,
		Accepted:       &result.Accepted,
		Correct:        &result.Correct,
		Completed:      result.Completed,
		Question:       result.Question,
		QuestionNumber: result.QuestionNumber,
		Notifications:  result.Notifications,
	}
	if result.Reward != nil {
		unlocked := make([]string, 0, len(result.Reward.Unlocked))
		for _, id := range result.Reward.Unlocked {
			unlocked = append(unlocked, string(id))
		}
		resp.Reward = &rewardResponse{
			Points:    result.Reward.Points,
			Unlocked:  unlocked,
			Persisted: result.Reward.Persisted,
			Profile:   query.BuildProfileDTO(result.Reward.Profile),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleAbandon handles DELETE /api/v1/activities/{id}.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	err := s.deps.AbandonActivity.Handle(r.Context(), command.AbandonActivityCommand{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE AND CONTENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProfile handles GET /api/v1/profile?player_key=...
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	playerKey := r.URL.Query().Get("player_key")

	dto, err := s.deps.GetProfile.Handle(r.Context(), query.GetProfileQuery{PlayerKey: playerKey})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// handleRandomTip handles GET /api/v1/tips/random.
func (s *Server) handleRandomTip(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.GetRandomTip.Handle(r.Context()))
}

// handleGetTopic handles GET /api/v1/content/{topic}.
func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.GetTopic.Handle(r.Context(), query.GetTopicQuery{Key: r.PathValue("topic")})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// requireAdmin guards a handler with the bcrypt admin password.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.AdminPasswordHash == "" {
			writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
			return
		}
		password := r.Header.Get("X-Admin-Password")
		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password)); err != nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin credentials")
			return
		}
		next(w, r)
	}
}

// handleResetProfile handles POST /api/v1/admin/reset.
func (s *Server) handleResetProfile(w http.ResponseWriter, r *http.Request) {
	var req resetProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.ResetProfile.Handle(r.Context(), command.ResetProfileCommand{
		PlayerKey: req.PlayerKey,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resetProfileResponse{
		Profile:   query.BuildProfileDTO(result.Profile),
		Persisted: result.Persisted,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return false
	}
	return true
}

// writeDomainError maps domain errors to HTTP responses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Session not found or already finished")
	case errors.Is(err, shared.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, session.ErrFinished):
		writeJSONError(w, http.StatusConflict, "session_finished", "Session is already finished")
	case errors.Is(err, session.ErrUnknownElement),
		errors.Is(err, session.ErrNoSuchItem),
		errors.Is(err, session.ErrInvalidOption),
		errors.Is(err, session.ErrWrongVariant):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_interaction", err.Error())
	case errors.Is(err, shared.ErrPersistence):
		writeJSONError(w, http.StatusServiceUnavailable, "storage_unavailable", "Profile storage is unavailable")
	default:
		s.logger.Error("unhandled request error",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}
