package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/dailycal/internal/models"
)

// MemoryStore is a Provider that keeps everything in process memory.
type MemoryStore struct {
	mu           sync.RWMutex
	registration int64
	lastPlayed   int64
	playedDays   int
	days         map[int64]models.CalendarDay
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		days: make(map[int64]models.CalendarDay),
	}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Load() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetConfigPath() string { return "memory" }

func (s *MemoryStore) GetRegistrationDate() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registration, nil
}

func (s *MemoryStore) SetRegistrationDate(ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registration != 0 && s.registration != ts {
		return ErrRegistrationSet
	}
	s.registration = ts
	return nil
}

func (s *MemoryStore) GetLastPlayed() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPlayed, nil
}

func (s *MemoryStore) SetLastPlayed(key int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPlayed = key
	return nil
}

func (s *MemoryStore) GetPlayedDays() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playedDays, nil
}

func (s *MemoryStore) GetDay(key int64) (models.CalendarDay, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day, ok := s.days[key]
	return day, ok, nil
}

func (s *MemoryStore) GetDays(startKey, endKey int64) (map[int64]models.CalendarDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]models.CalendarDay)
	for k, d := range s.days {
		if k >= startKey && k < endKey {
			out[k] = d
		}
	}
	return out, nil
}

func (s *MemoryStore) GetAllDays() ([]models.CalendarDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	days := make([]models.CalendarDay, 0, len(s.days))
	for _, d := range s.days {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Key < days[j].Key })
	return days, nil
}

func (s *MemoryStore) RecordPlay(rec models.PlayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Day != nil {
		if _, exists := s.days[rec.Day.Key]; exists {
			return fmt.Errorf("%w: %d", ErrDayExists, rec.Day.Key)
		}
		s.days[rec.Day.Key] = *rec.Day
		s.playedDays++
	}
	s.lastPlayed = rec.Key
	return nil
}

func (s *MemoryStore) CompleteDay(key int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.days[key]
	if !ok {
		return fmt.Errorf("%w: %d", ErrDayNotFound, key)
	}
	completedAt := at.UTC()
	day.State = models.StateCompleted
	day.CompletedAt = &completedAt
	s.days[key] = day
	return nil
}
