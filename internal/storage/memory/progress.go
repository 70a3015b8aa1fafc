package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// ProgressMemoryStorage implements storage.ProgressStorage. All delta
// application happens under one mutex, which gives the same lost-update
// protection the postgres implementation gets from its upsert-increment.
type ProgressMemoryStorage struct {
	mu   sync.Mutex
	rows map[string]storage.DailyProgress // key: userID:date
}

func NewProgressMemoryStorage() *ProgressMemoryStorage {
	return &ProgressMemoryStorage{
		rows: make(map[string]storage.DailyProgress),
	}
}

func progressKey(userID uuid.UUID, date string) string {
	return userID.String() + ":" + date
}

func (s *ProgressMemoryStorage) GetDaily(ctx context.Context, userID uuid.UUID, date string) (*storage.DailyProgress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, exists := s.rows[progressKey(userID, date)]
	if !exists {
		return nil, false, nil
	}
	return &row, true, nil
}

func (s *ProgressMemoryStorage) ApplyDelta(ctx context.Context, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyDeltaLocked(userID, date, delta, true)
	return nil
}

// ApplyDeltaIfExists increments only an existing row; absent rows are left
// absent (the delete-reversal path: nothing to reverse). Used by the plan
// storages, not part of the ProgressStorage interface.
func (s *ProgressMemoryStorage) ApplyDeltaIfExists(ctx context.Context, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyDeltaLocked(userID, date, delta, false)
	return nil
}

func (s *ProgressMemoryStorage) applyDeltaLocked(userID uuid.UUID, date string, delta storage.ProgressDelta, createIfAbsent bool) {
	key := progressKey(userID, date)
	row, exists := s.rows[key]
	if !exists {
		if !createIfAbsent {
			return
		}
		row = newProgressRow(userID, date)
	}

	row.CaloriesIntake += delta.Calories
	row.ProteinIntake += delta.Protein
	row.CarbsIntake += delta.Carbs
	row.FatsIntake += delta.Fats
	row.CaloriesBurned += delta.Burned
	row.UpdatedAt = time.Now().UTC()
	s.rows[key] = row
}

func (s *ProgressMemoryStorage) UpsertAncillary(ctx context.Context, userID uuid.UUID, date string, steps *int, waterMl *int, goalStatus *string) (*storage.DailyProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey(userID, date)
	row, exists := s.rows[key]
	if !exists {
		row = newProgressRow(userID, date)
	}

	if steps != nil {
		row.StepsCount = *steps
	}
	if waterMl != nil {
		row.WaterIntakeMl = *waterMl
	}
	if goalStatus != nil {
		row.GoalStatus = *goalStatus
	}
	row.UpdatedAt = time.Now().UTC()
	s.rows[key] = row

	return &row, nil
}

func (s *ProgressMemoryStorage) ListRange(ctx context.Context, userID uuid.UUID, from, to string) ([]storage.DailyProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []storage.DailyProgress
	for _, row := range s.rows {
		if row.UserID == userID && row.Date >= from && row.Date <= to {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func newProgressRow(userID uuid.UUID, date string) storage.DailyProgress {
	now := time.Now().UTC()
	return storage.DailyProgress{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
