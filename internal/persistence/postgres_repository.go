package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertRun(record RunRecord) error {
	const q = `
INSERT INTO simulation_runs (
  run_id, advisor, starting_seed, games_requested, games_completed, wins, stuck, limit_hit, total_moves, total_draws, status, error, started_at, ended_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
ON CONFLICT (run_id) DO UPDATE SET
  advisor = EXCLUDED.advisor,
  starting_seed = EXCLUDED.starting_seed,
  games_requested = EXCLUDED.games_requested,
  games_completed = EXCLUDED.games_completed,
  wins = EXCLUDED.wins,
  stuck = EXCLUDED.stuck,
  limit_hit = EXCLUDED.limit_hit,
  total_moves = EXCLUDED.total_moves,
  total_draws = EXCLUDED.total_draws,
  status = EXCLUDED.status,
  error = EXCLUDED.error,
  started_at = EXCLUDED.started_at,
  ended_at = EXCLUDED.ended_at,
  updated_at = now()
`
	_, err := r.db.ExecContext(context.Background(), q,
		record.RunID,
		record.Advisor,
		record.StartingSeed,
		record.GamesRequested,
		record.GamesCompleted,
		record.Wins,
		record.Stuck,
		record.LimitHit,
		record.TotalMoves,
		record.TotalDraws,
		string(record.Status),
		record.Error,
		record.StartedAt,
		record.EndedAt,
	)
	return err
}

func (r *postgresRepository) GetRun(runID string) (RunRecord, bool, error) {
	const q = `
SELECT run_id, advisor, starting_seed, games_requested, games_completed, wins, stuck, limit_hit, total_moves, total_draws, status, error, started_at, ended_at
FROM simulation_runs
WHERE run_id = $1
`
	var status string
	var out RunRecord
	err := r.db.QueryRowContext(context.Background(), q, runID).Scan(
		&out.RunID,
		&out.Advisor,
		&out.StartingSeed,
		&out.GamesRequested,
		&out.GamesCompleted,
		&out.Wins,
		&out.Stuck,
		&out.LimitHit,
		&out.TotalMoves,
		&out.TotalDraws,
		&status,
		&out.Error,
		&out.StartedAt,
		&out.EndedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, err
	}
	out.Status = RunStatus(status)
	return out, true, nil
}

func (r *postgresRepository) ListRuns() ([]RunRecord, error) {
	const q = `
SELECT run_id, advisor, starting_seed, games_requested, games_completed, wins, stuck, limit_hit, total_moves, total_draws, status, error, started_at, ended_at
FROM simulation_runs
ORDER BY started_at DESC, run_id ASC
`
	rows, err := r.db.QueryContext(context.Background(), q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RunRecord, 0, 32)
	for rows.Next() {
		var rec RunRecord
		var status string
		if err := rows.Scan(
			&rec.RunID,
			&rec.Advisor,
			&rec.StartingSeed,
			&rec.GamesRequested,
			&rec.GamesCompleted,
			&rec.Wins,
			&rec.Stuck,
			&rec.LimitHit,
			&rec.TotalMoves,
			&rec.TotalDraws,
			&status,
			&rec.Error,
			&rec.StartedAt,
			&rec.EndedAt,
		); err != nil {
			return nil, err
		}
		rec.Status = RunStatus(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepository) AppendGame(record GameRecord) error {
	finalState, err := json.Marshal(record.FinalState)
	if err != nil {
		return fmt.Errorf("marshal final state: %w", err)
	}
	const q = `
INSERT INTO simulation_games (
  run_id, seed, outcome, moves, draws, recycles, fallbacks, banked, final_state, at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err = r.db.ExecContext(context.Background(), q,
		record.RunID,
		record.Seed,
		record.Outcome,
		record.Moves,
		record.Draws,
		record.Recycles,
		record.Fallbacks,
		record.Banked,
		finalState,
		record.At,
	)
	if isForeignKeyViolation(err) {
		return ErrRunNotFound
	}
	return err
}

func (r *postgresRepository) ListGames(runID string) ([]GameRecord, error) {
	const q = `
SELECT run_id, seed, outcome, moves, draws, recycles, fallbacks, banked, final_state, at
FROM simulation_games
WHERE run_id = $1
ORDER BY id ASC
`
	rows, err := r.db.QueryContext(context.Background(), q, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GameRecord, 0, 64)
	for rows.Next() {
		var rec GameRecord
		var finalStateRaw []byte
		if err := rows.Scan(
			&rec.RunID,
			&rec.Seed,
			&rec.Outcome,
			&rec.Moves,
			&rec.Draws,
			&rec.Recycles,
			&rec.Fallbacks,
			&rec.Banked,
			&finalStateRaw,
			&rec.At,
		); err != nil {
			return nil, err
		}
		if len(finalStateRaw) > 0 {
			if err := json.Unmarshal(finalStateRaw, &rec.FinalState); err != nil {
				return nil, fmt.Errorf("unmarshal final_state for run %s seed %d: %w", rec.RunID, rec.Seed, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isForeignKeyViolation(err error) bool {
	return hasSQLState(err, "23503")
}

type sqlStateProvider interface {
	SQLState() string
}

func hasSQLState(err error, code string) bool {
	if err == nil {
		return false
	}
	var stateErr sqlStateProvider
	if errors.As(err, &stateErr) && stateErr.SQLState() == code {
		return true
	}
	// Fallback for drivers that only surface SQLSTATE in error text.
	return strings.Contains(err.Error(), "SQLSTATE "+code)
}
