// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Profile events
	EventPointsGained   EventType = "profile.points_gained"
	EventLevelUp        EventType = "progress.level_up"
	EventAchievementNew EventType = "achievement.unlocked"
	EventProfileReset   EventType = "profile.reset"

	// Activity events
	EventSessionStarted     EventType = "session.started"
	EventSessionAbandoned   EventType = "session.abandoned"
	EventChallengeCompleted EventType = "challenge.completed"
	EventGameCompleted      EventType = "game.completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a published event.
type EventHandler func(event Event) error

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Profile Events
// ═══════════════════════════════════════════════════════════════════════════

// PointsGainedEvent is emitted when a player earns eco points.
type PointsGainedEvent struct {
	BaseEvent
	PlayerKey string `json:"player_key"`
	Amount    int    `json:"amount"`
	NewTotal  int    `json:"new_total"`
	Source    string `json:"source"` // e.g., "challenge:recycling", "game:quiz"
}

// Payload implements Event interface.
func (e PointsGainedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"player_key": e.PlayerKey,
		"amount":     e.Amount,
		"new_total":  e.NewTotal,
		"source":     e.Source,
	}
}

// NewPointsGainedEvent creates a new PointsGainedEvent.
func NewPointsGainedEvent(playerKey string, amount, newTotal int, source string) PointsGainedEvent {
	return PointsGainedEvent{
		BaseEvent: NewBaseEvent(EventPointsGained, playerKey),
		PlayerKey: playerKey,
		Amount:    amount,
		NewTotal:  newTotal,
		Source:    source,
	}
}

// LevelUpEvent is emitted when the derived level increases.
type LevelUpEvent struct {
	BaseEvent
	PlayerKey string `json:"player_key"`
	OldLevel  int    `json:"old_level"`
	NewLevel  int    `json:"new_level"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"player_key": e.PlayerKey,
		"old_level":  e.OldLevel,
		"new_level":  e.NewLevel,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(playerKey string, oldLevel, newLevel int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, playerKey),
		PlayerKey: playerKey,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// AchievementUnlockedEvent is emitted when an achievement predicate
// becomes true for the first time.
type AchievementUnlockedEvent struct {
	BaseEvent
	PlayerKey     string `json:"player_key"`
	AchievementID string `json:"achievement_id"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"player_key":     e.PlayerKey,
		"achievement_id": e.AchievementID,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(playerKey, achievementID string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementNew, playerKey),
		PlayerKey:     playerKey,
		AchievementID: achievementID,
	}
}

// ProfileResetEvent is emitted when an administrator resets a profile.
type ProfileResetEvent struct {
	BaseEvent
	PlayerKey string `json:"player_key"`
}

// Payload implements Event interface.
func (e ProfileResetEvent) Payload() map[string]interface{} {
	return map[string]interface{}{"player_key": e.PlayerKey}
}

// NewProfileResetEvent creates a new ProfileResetEvent.
func NewProfileResetEvent(playerKey string) ProfileResetEvent {
	return ProfileResetEvent{
		BaseEvent: NewBaseEvent(EventProfileReset, playerKey),
		PlayerKey: playerKey,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity Events
// ═══════════════════════════════════════════════════════════════════════════

// SessionStartedEvent is emitted when an activity session is created.
type SessionStartedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	PlayerKey string `json:"player_key"`
	Kind      string `json:"kind"`
}

// Payload implements Event interface.
func (e SessionStartedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"player_key": e.PlayerKey,
		"kind":       e.Kind,
	}
}

// NewSessionStartedEvent creates a new SessionStartedEvent.
func NewSessionStartedEvent(sessionID, playerKey, kind string) SessionStartedEvent {
	return SessionStartedEvent{
		BaseEvent: NewBaseEvent(EventSessionStarted, sessionID),
		SessionID: sessionID,
		PlayerKey: playerKey,
		Kind:      kind,
	}
}

// SessionAbandonedEvent is emitted when the player closes an activity
// before completing it. No reward is dispatched in that case.
type SessionAbandonedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	PlayerKey string `json:"player_key"`
	Kind      string `json:"kind"`
	Count     int    `json:"count"` // progress at the moment of abandonment
}

// Payload implements Event interface.
func (e SessionAbandonedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"player_key": e.PlayerKey,
		"kind":       e.Kind,
		"count":      e.Count,
	}
}

// NewSessionAbandonedEvent creates a new SessionAbandonedEvent.
func NewSessionAbandonedEvent(sessionID, playerKey, kind string, count int) SessionAbandonedEvent {
	return SessionAbandonedEvent{
		BaseEvent: NewBaseEvent(EventSessionAbandoned, sessionID),
		SessionID: sessionID,
		PlayerKey: playerKey,
		Kind:      kind,
		Count:     count,
	}
}

// ChallengeCompletedEvent is emitted when a categorized challenge finishes.
type ChallengeCompletedEvent struct {
	BaseEvent
	PlayerKey string `json:"player_key"`
	Category  string `json:"category"`
	Points    int    `json:"points"`
}

// Payload implements Event interface.
func (e ChallengeCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"player_key": e.PlayerKey,
		"category":   e.Category,
		"points":     e.Points,
	}
}

// NewChallengeCompletedEvent creates a new ChallengeCompletedEvent.
func NewChallengeCompletedEvent(playerKey, category string, points int) ChallengeCompletedEvent {
	return ChallengeCompletedEvent{
		BaseEvent: NewBaseEvent(EventChallengeCompleted, playerKey),
		PlayerKey: playerKey,
		Category:  category,
		Points:    points,
	}
}

// GameCompletedEvent is emitted when a non-categorized game (quiz) finishes.
type GameCompletedEvent struct {
	BaseEvent
	PlayerKey string `json:"player_key"`
	Kind      string `json:"kind"`
	Points    int    `json:"points"`
}

// Payload implements Event interface.
func (e GameCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"player_key": e.PlayerKey,
		"kind":       e.Kind,
		"points":     e.Points,
	}
}

// NewGameCompletedEvent creates a new GameCompletedEvent.
func NewGameCompletedEvent(playerKey, kind string, points int) GameCompletedEvent {
	return GameCompletedEvent{
		BaseEvent: NewBaseEvent(EventGameCompleted, playerKey),
		PlayerKey: playerKey,
		Kind:      kind,
		Points:    points,
	}
}
