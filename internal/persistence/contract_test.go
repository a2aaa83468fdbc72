package persistence

import (
	"errors"
	"testing"
	"time"

	"klondike/internal/domain"
)

// runRepositoryContractTests exercises behavior every Repository
// implementation must share.
func runRepositoryContractTests(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Helper()

	t.Run("UpsertAndGetRunRoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		now := time.Now().UTC().Truncate(time.Microsecond)
		ended := now.Add(time.Minute)

		record := RunRecord{
			RunID:          "run-1",
			Advisor:        "scored",
			StartingSeed:   42,
			GamesRequested: 100,
			GamesCompleted: 100,
			Wins:           18,
			Stuck:          80,
			LimitHit:       2,
			TotalMoves:     9000,
			TotalDraws:     4000,
			Status:         RunStatusCompleted,
			StartedAt:      now,
			EndedAt:        &ended,
		}
		if err := repo.UpsertRun(record); err != nil {
			t.Fatalf("UpsertRun failed: %v", err)
		}

		got, ok, err := repo.GetRun("run-1")
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if !ok {
			t.Fatalf("run not found after upsert")
		}
		if got.Advisor != "scored" || got.Wins != 18 || got.Status != RunStatusCompleted {
			t.Errorf("round trip mismatch: %+v", got)
		}
		if got.EndedAt == nil || !got.EndedAt.Equal(ended) {
			t.Errorf("EndedAt mismatch: %v", got.EndedAt)
		}
	})

	t.Run("GetMissingRun", func(t *testing.T) {
		repo := newRepo(t)

		_, ok, err := repo.GetRun("missing")
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if ok {
			t.Fatalf("missing run reported as found")
		}
	})

	t.Run("UpsertOverwritesRun", func(t *testing.T) {
		repo := newRepo(t)
		now := time.Now().UTC().Truncate(time.Microsecond)

		record := RunRecord{RunID: "run-1", Advisor: "greedy", Status: RunStatusRunning, StartedAt: now, GamesRequested: 10}
		if err := repo.UpsertRun(record); err != nil {
			t.Fatalf("UpsertRun failed: %v", err)
		}
		record.Status = RunStatusCompleted
		record.GamesCompleted = 10
		if err := repo.UpsertRun(record); err != nil {
			t.Fatalf("second UpsertRun failed: %v", err)
		}

		got, _, err := repo.GetRun("run-1")
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if got.Status != RunStatusCompleted || got.GamesCompleted != 10 {
			t.Errorf("upsert did not overwrite: %+v", got)
		}
	})

	t.Run("AppendGameToMissingRun", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.AppendGame(GameRecord{RunID: "missing", Seed: 1, Outcome: "stuck", At: time.Now().UTC()})
		if !errors.Is(err, ErrRunNotFound) {
			t.Fatalf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("AppendAndListGamesKeepsOrderAndState", func(t *testing.T) {
		repo := newRepo(t)
		now := time.Now().UTC().Truncate(time.Microsecond)

		if err := repo.UpsertRun(RunRecord{RunID: "run-1", Advisor: "scored", Status: RunStatusRunning, StartedAt: now, GamesRequested: 2}); err != nil {
			t.Fatalf("UpsertRun failed: %v", err)
		}

		final, err := domain.NewGame(domain.NewSeededShuffler(5))
		if err != nil {
			t.Fatalf("NewGame failed: %v", err)
		}
		for i, seed := range []int64{5, 6} {
			if err := repo.AppendGame(GameRecord{
				RunID:      "run-1",
				Seed:       seed,
				Outcome:    "stuck",
				Moves:      10 + i,
				Draws:      20,
				Banked:     3,
				FinalState: final,
				At:         now.Add(time.Duration(i) * time.Second),
			}); err != nil {
				t.Fatalf("AppendGame %d failed: %v", seed, err)
			}
		}

		games, err := repo.ListGames("run-1")
		if err != nil {
			t.Fatalf("ListGames failed: %v", err)
		}
		if len(games) != 2 {
			t.Fatalf("expected 2 games, got %d", len(games))
		}
		if games[0].Seed != 5 || games[1].Seed != 6 {
			t.Errorf("games out of insertion order: %d, %d", games[0].Seed, games[1].Seed)
		}
		if games[0].Moves != 10 || games[1].Moves != 11 {
			t.Errorf("move counts mismatch: %d, %d", games[0].Moves, games[1].Moves)
		}
		if len(games[0].FinalState.Stock) != 24 {
			t.Errorf("final state did not survive the round trip: stock %d", len(games[0].FinalState.Stock))
		}
		if len(games[0].FinalState.Tableau[6]) != 7 {
			t.Errorf("final state tableau mismatch: %d", len(games[0].FinalState.Tableau[6]))
		}
	})

	t.Run("ListRunsNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		now := time.Now().UTC().Truncate(time.Microsecond)

		for i, id := range []string{"run-old", "run-new"} {
			if err := repo.UpsertRun(RunRecord{
				RunID:     id,
				Advisor:   "greedy",
				Status:    RunStatusCompleted,
				StartedAt: now.Add(time.Duration(i) * time.Hour),
			}); err != nil {
				t.Fatalf("UpsertRun %s failed: %v", id, err)
			}
		}

		runs, err := repo.ListRuns()
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].RunID != "run-new" || runs[1].RunID != "run-old" {
			t.Errorf("runs not newest-first: %s, %s", runs[0].RunID, runs[1].RunID)
		}
	})
}
