package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type resultRepository struct {
	conn *sql.DB
}

func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

func (that *resultRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT OR REPLACE INTO results (game_id, player_id, status, pegs_left, moves, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		result.GameID, result.PlayerID, result.Status, result.PegsLeft, result.Moves, result.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

// ListByPlayer returns the newest results first.
func (that *resultRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	query := `SELECT game_id, player_id, status, pegs_left, moves, finished_at
		FROM results WHERE player_id = ? ORDER BY finished_at DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}
	defer rows.Close()

	var results []*entity.Result
	for rows.Next() {
		var (
			result     entity.Result
			finishedAt int64
		)

		if err = rows.Scan(&result.GameID, &result.PlayerID, &result.Status, &result.PegsLeft, &result.Moves, &finishedAt); err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		result.FinishedAt = time.UnixMilli(finishedAt).UTC()
		results = append(results, &result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read results: %w", err)
	}

	return results, nil
}
