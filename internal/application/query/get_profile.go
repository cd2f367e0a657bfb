// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// Возвращает полный снимок профиля игрока для главного экрана: очки,
// уровень, статистика, достижения и прогресс-бары по категориям.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileQuery содержит параметры запроса профиля.
type GetProfileQuery struct {
	// PlayerKey - ключ профиля игрока.
	PlayerKey string
}

// Validate проверяет корректность параметров.
func (q GetProfileQuery) Validate() error {
	if q.PlayerKey == "" {
		return shared.NewValidationError("player_key", "is required")
	}
	return nil
}

// AchievementDTO - достижение для отображения.
type AchievementDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	Unlocked bool   `json:"unlocked"`
}

// ProfileDTO - снимок профиля для отображения.
type ProfileDTO struct {
	// EcoPoints - текущие эко-очки.
	EcoPoints int `json:"eco_points"`

	// Level - производный уровень.
	Level int `json:"level"`

	// PointsIntoLevel - очки внутри текущего уровня [0, 100).
	PointsIntoLevel int `json:"points_into_level"`

	// PointsToNextLevel - сколько очков осталось до следующего уровня.
	PointsToNextLevel int `json:"points_to_next_level"`

	// ChallengesCompleted - всего завершено челленджей.
	ChallengesCompleted int `json:"challenges_completed"`

	// TreesPlanted - производный счётчик (wildlife).
	TreesPlanted int `json:"trees_planted"`

	// WasteReduced - производный счётчик (recycling).
	WasteReduced int `json:"waste_reduced"`

	// Achievements - все определения с флагом разблокировки, в порядке
	// проверки.
	Achievements []AchievementDTO `json:"achievements"`

	// Progress - прогресс-бары категорий в фиксированном порядке.
	Progress []player.CategoryProgress `json:"progress"`

	// UpdatedAt - время последней мутации профиля.
	UpdatedAt time.Time `json:"updated_at"`
}

// GetProfileHandler обрабатывает GetProfileQuery.
type GetProfileHandler struct {
	store player.Store
}

// NewGetProfileHandler создаёт обработчик запроса профиля.
func NewGetProfileHandler(store player.Store) *GetProfileHandler {
	return &GetProfileHandler{store: store}
}

// Handle выполняет запрос профиля.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*ProfileDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_profile: %w", err)
	}

	profile, err := h.store.Load(ctx, q.PlayerKey)
	if err != nil {
		return nil, fmt.Errorf("get_profile: %w", err)
	}

	return BuildProfileDTO(profile), nil
}

// BuildProfileDTO собирает DTO из агрегата профиля. Используется и
// запросом, и командными ответами, чтобы снимки были идентичны.
func BuildProfileDTO(p *player.Profile) *ProfileDTO {
	points := int(p.EcoPoints)
	into := points % player.PointsPerLevel

	achievements := make([]AchievementDTO, 0, 4)
	for _, def := range player.AchievementDefinitions() {
		achievements = append(achievements, AchievementDTO{
			ID:       string(def.ID),
			Name:     def.Name,
			Emoji:    def.Emoji,
			Unlocked: p.HasAchievement(def.ID),
		})
	}

	return &ProfileDTO{
		EcoPoints:           points,
		Level:               int(p.Level),
		PointsIntoLevel:     into,
		PointsToNextLevel:   player.PointsPerLevel - into,
		ChallengesCompleted: p.ChallengesCompleted,
		TreesPlanted:        p.TreesPlanted,
		WasteReduced:        p.WasteReduced,
		Achievements:        achievements,
		Progress:            p.DisplayProgress(),
		UpdatedAt:           p.UpdatedAt,
	}
}
