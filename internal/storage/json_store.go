package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/julianstephens/dailycal/internal/models"
)

type fileData struct {
	Version          int                          `json:"version"`
	RegistrationDate int64                        `json:"registration_date"`
	LastPlayed       int64                        `json:"last_played"`
	PlayedDays       int                          `json:"played_days"`
	Days             map[int64]models.CalendarDay `json:"days"`
}

// JSONStore keeps the whole profile in one JSON document.
//
// JSONStore is not safe for concurrent use by multiple goroutines, and running
// several processes against the same file is not supported.
type JSONStore struct {
	path string
	data *fileData
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("%w at %s", ErrAlreadyInitialized, s.path)
	}

	s.data = &fileData{
		Version: 1,
		Days:    make(map[int64]models.CalendarDay),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.data = &fileData{}
	if err := json.Unmarshal(raw, s.data); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.data.Days == nil {
		s.data.Days = make(map[int64]models.CalendarDay)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes to a sibling temp file and renames it over the store.
func (s *JSONStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetRegistrationDate() (int64, error) {
	if s.data == nil {
		return 0, ErrNotLoaded
	}
	return s.data.RegistrationDate, nil
}

func (s *JSONStore) SetRegistrationDate(ts int64) error {
	if s.data == nil {
		return ErrNotLoaded
	}
	if s.data.RegistrationDate != 0 && s.data.RegistrationDate != ts {
		return ErrRegistrationSet
	}
	prev := s.data.RegistrationDate
	s.data.RegistrationDate = ts
	if err := s.save(); err != nil {
		s.data.RegistrationDate = prev
		return err
	}
	return nil
}

func (s *JSONStore) GetLastPlayed() (int64, error) {
	if s.data == nil {
		return 0, ErrNotLoaded
	}
	return s.data.LastPlayed, nil
}

func (s *JSONStore) SetLastPlayed(key int64) error {
	if s.data == nil {
		return ErrNotLoaded
	}
	prev := s.data.LastPlayed
	s.data.LastPlayed = key
	if err := s.save(); err != nil {
		s.data.LastPlayed = prev
		return err
	}
	return nil
}

func (s *JSONStore) GetPlayedDays() (int, error) {
	if s.data == nil {
		return 0, ErrNotLoaded
	}
	return s.data.PlayedDays, nil
}

func (s *JSONStore) GetDay(key int64) (models.CalendarDay, bool, error) {
	if s.data == nil {
		return models.CalendarDay{}, false, ErrNotLoaded
	}
	day, ok := s.data.Days[key]
	return day, ok, nil
}

func (s *JSONStore) GetDays(startKey, endKey int64) (map[int64]models.CalendarDay, error) {
	if s.data == nil {
		return nil, ErrNotLoaded
	}
	out := make(map[int64]models.CalendarDay)
	for k, d := range s.data.Days {
		if k >= startKey && k < endKey {
			out[k] = d
		}
	}
	return out, nil
}

func (s *JSONStore) GetAllDays() ([]models.CalendarDay, error) {
	if s.data == nil {
		return nil, ErrNotLoaded
	}
	days := make([]models.CalendarDay, 0, len(s.data.Days))
	for _, d := range s.data.Days {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Key < days[j].Key })
	return days, nil
}

func (s *JSONStore) RecordPlay(rec models.PlayRecord) error {
	if s.data == nil {
		return ErrNotLoaded
	}

	prevLast, prevCount := s.data.LastPlayed, s.data.PlayedDays
	if rec.Day != nil {
		if _, exists := s.data.Days[rec.Day.Key]; exists {
			return fmt.Errorf("%w: %d", ErrDayExists, rec.Day.Key)
		}
		s.data.Days[rec.Day.Key] = *rec.Day
		s.data.PlayedDays++
	}
	s.data.LastPlayed = rec.Key

	if err := s.save(); err != nil {
		if rec.Day != nil {
			delete(s.data.Days, rec.Day.Key)
		}
		s.data.LastPlayed, s.data.PlayedDays = prevLast, prevCount
		return err
	}
	return nil
}

func (s *JSONStore) CompleteDay(key int64, at time.Time) error {
	if s.data == nil {
		return ErrNotLoaded
	}
	day, ok := s.data.Days[key]
	if !ok {
		return fmt.Errorf("%w: %d", ErrDayNotFound, key)
	}
	prev := day
	completedAt := at.UTC()
	day.State = models.StateCompleted
	day.CompletedAt = &completedAt
	s.data.Days[key] = day

	if err := s.save(); err != nil {
		s.data.Days[key] = prev
		return err
	}
	return nil
}

// GetConfigPath returns the path to the underlying storage file.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
