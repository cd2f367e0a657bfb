package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
	"github.com/ecokids/ecokids-hub/internal/domain/shared"
	"github.com/ecokids/ecokids-hub/pkg/retry"
)

// archiveSchema is applied on startup. Append-only: snapshots are never
// updated or deleted.
const archiveSchema = `
CREATE TABLE IF NOT EXISTS profile_snapshots (
	id BIGSERIAL PRIMARY KEY,
	player_key TEXT NOT NULL,
	eco_points INTEGER NOT NULL,
	level INTEGER NOT NULL,
	challenges_completed INTEGER NOT NULL,
	trees_planted INTEGER NOT NULL,
	waste_reduced INTEGER NOT NULL,
	achievements TEXT[] NOT NULL,
	trigger_event TEXT NOT NULL,
	recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_profile_snapshots_player
	ON profile_snapshots (player_key, recorded_at DESC);
`

// Archive writes profile snapshots on reward and reset events. It is a
// passive subscriber: archive failures are logged and never reach the
// game flow.
type Archive struct {
	conn    *Connection
	store   player.Store
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewArchive creates the archive and ensures its schema exists.
func NewArchive(ctx context.Context, conn *Connection, store player.Store, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := conn.Exec(ctx, archiveSchema); err != nil {
		return nil, fmt.Errorf("postgres: ensure archive schema: %w", err)
	}

	return &Archive{
		conn:    conn,
		store:   store,
		retrier: retry.DatabaseRetrier(),
		logger:  logger,
	}, nil
}

// EventHandler returns the bus handler that snapshots a profile after
// each points gain and reset.
func (a *Archive) EventHandler() shared.EventHandler {
	return func(event shared.Event) error {
		switch event.EventType() {
		case shared.EventPointsGained, shared.EventProfileReset:
		default:
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		playerKey := event.AggregateID()
		profile, err := a.store.Load(ctx, playerKey)
		if err != nil {
			a.logger.Warn("archive: load profile failed", "player_key", playerKey, "error", err)
			return nil
		}

		if err := a.Record(ctx, playerKey, profile, string(event.EventType())); err != nil {
			a.logger.Warn("archive: snapshot failed", "player_key", playerKey, "error", err)
		}
		return nil
	}
}

// Record inserts one profile snapshot, retrying transient failures.
func (a *Archive) Record(ctx context.Context, playerKey string, p *player.Profile, triggerEvent string) error {
	achievements := make([]string, 0, 4)
	for _, id := range p.Achievements() {
		achievements = append(achievements, string(id))
	}

	return a.retrier.Do(ctx, func(ctx context.Context) error {
		_, err := a.conn.Exec(ctx, `
			INSERT INTO profile_snapshots
				(player_key, eco_points, level, challenges_completed,
				 trees_planted, waste_reduced, achievements, trigger_event)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			playerKey,
			int(p.EcoPoints),
			int(p.Level),
			p.ChallengesCompleted,
			p.TreesPlanted,
			p.WasteReduced,
			achievements,
			triggerEvent,
		)
		if err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
}

// Snapshot is one archived profile state.
type Snapshot struct {
	PlayerKey           string    `json:"player_key"`
	EcoPoints           int       `json:"eco_points"`
	Level               int       `json:"level"`
	ChallengesCompleted int       `json:"challenges_completed"`
	TreesPlanted        int       `json:"trees_planted"`
	WasteReduced        int       `json:"waste_reduced"`
	Achievements        []string  `json:"achievements"`
	TriggerEvent        string    `json:"trigger_event"`
	RecordedAt          time.Time `json:"recorded_at"`
}

// History returns the most recent snapshots for a player, newest first.
func (a *Archive) History(ctx context.Context, playerKey string, limit int) ([]Snapshot, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := a.conn.Query(ctx, `
		SELECT player_key, eco_points, level, challenges_completed,
		       trees_planted, waste_reduced, achievements, trigger_event, recorded_at
		FROM profile_snapshots
		WHERE player_key = $1
		ORDER BY recorded_at DESC
		LIMIT $2`,
		playerKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: query history: %w", err)
	}
	defer rows.Close()

	var history []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(
			&s.PlayerKey, &s.EcoPoints, &s.Level, &s.ChallengesCompleted,
			&s.TreesPlanted, &s.WasteReduced, &s.Achievements, &s.TriggerEvent, &s.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot: %w", err)
		}
		history = append(history, s)
	}
	return history, rows.Err()
}
