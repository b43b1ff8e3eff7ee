package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/dailycal/internal/models"
)

var (
	ErrNotLoaded          = errors.New("storage not loaded")
	ErrDayExists          = errors.New("day already recorded")
	ErrDayNotFound        = errors.New("day not recorded")
	ErrRegistrationSet    = errors.New("registration date already set")
	ErrNotInitialized     = errors.New("storage not initialized, run 'dailycal init' first")
	ErrAlreadyInitialized = errors.New("storage already initialized")
)

// Provider is the key-value persistence the daily engine runs on. Ledger keys
// are UTC midnight unix timestamps.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Profile
	GetRegistrationDate() (int64, error)
	// SetRegistrationDate stores the account creation timestamp once;
	// it returns ErrRegistrationSet when a different value is already stored.
	SetRegistrationDate(ts int64) error
	// GetLastPlayed returns the last-played marker, 0 when empty.
	GetLastPlayed() (int64, error)
	SetLastPlayed(key int64) error
	// GetPlayedDays returns the number of distinct days ever played.
	GetPlayedDays() (int, error)

	// Ledger
	GetDay(key int64) (models.CalendarDay, bool, error)
	// GetDays returns the records with startKey <= key < endKey.
	GetDays(startKey, endKey int64) (map[int64]models.CalendarDay, error)
	// GetAllDays returns every record ordered by key.
	GetAllDays() ([]models.CalendarDay, error)
	// RecordPlay atomically inserts rec.Day (when set), increments the played
	// days counter for it, and sets the last-played marker to rec.Key.
	// Inserting a key that exists fails with ErrDayExists and changes nothing.
	RecordPlay(rec models.PlayRecord) error
	// CompleteDay moves an Active record to Completed. It returns ErrDayNotFound
	// when the key is not recorded.
	CompleteDay(key int64, at time.Time) error

	// Utils
	GetConfigPath() string
}
