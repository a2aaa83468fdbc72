package persistence

import (
	"errors"
	"sort"
	"sync"
	"time"

	"klondike/internal/domain"
)

var ErrRunNotFound = errors.New("simulation run not found")

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunRecord is one stored simulation batch.
type RunRecord struct {
	RunID          string
	Advisor        string
	StartingSeed   int64
	GamesRequested int
	GamesCompleted int
	Wins           int
	Stuck          int
	LimitHit       int
	TotalMoves     int
	TotalDraws     int
	Status         RunStatus
	Error          string
	StartedAt      time.Time
	EndedAt        *time.Time
}

// GameRecord is one stored playout within a run.
type GameRecord struct {
	RunID      string
	Seed       int64
	Outcome    string
	Moves      int
	Draws      int
	Recycles   int
	Fallbacks  int
	Banked     int
	FinalState domain.GameState
	At         time.Time
}

type Repository interface {
	UpsertRun(record RunRecord) error
	GetRun(runID string) (RunRecord, bool, error)
	ListRuns() ([]RunRecord, error)
	AppendGame(record GameRecord) error
	ListGames(runID string) ([]GameRecord, error)
}

type inMemoryRepository struct {
	mu sync.RWMutex

	runs  map[string]RunRecord
	games map[string][]GameRecord
}

func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		runs:  make(map[string]RunRecord),
		games: make(map[string][]GameRecord),
	}
}

func (r *inMemoryRepository) UpsertRun(record RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[record.RunID] = cloneRunRecord(record)
	return nil
}

func (r *inMemoryRepository) GetRun(runID string) (RunRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.runs[runID]
	if !ok {
		return RunRecord{}, false, nil
	}
	return cloneRunRecord(record), true, nil
}

func (r *inMemoryRepository) ListRuns() ([]RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := make([]RunRecord, 0, len(r.runs))
	for _, record := range r.runs {
		runs = append(runs, cloneRunRecord(record))
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].RunID < runs[j].RunID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

func (r *inMemoryRepository) AppendGame(record GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[record.RunID]; !exists {
		return ErrRunNotFound
	}
	r.games[record.RunID] = append(r.games[record.RunID], cloneGameRecord(record))
	return nil
}

func (r *inMemoryRepository) ListGames(runID string) ([]GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.games[runID]
	out := make([]GameRecord, 0, len(records))
	for _, record := range records {
		out = append(out, cloneGameRecord(record))
	}
	return out, nil
}

func cloneRunRecord(record RunRecord) RunRecord {
	out := record
	if record.EndedAt != nil {
		endedAt := *record.EndedAt
		out.EndedAt = &endedAt
	}
	return out
}

func cloneGameRecord(record GameRecord) GameRecord {
	out := record
	out.FinalState = record.FinalState.Clone()
	return out
}
