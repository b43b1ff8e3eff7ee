package models

import "time"

// LevelState is the persisted state of a played day.
type LevelState int

const (
	StateActive    LevelState = 0
	StateCompleted LevelState = 1
)

func (s LevelState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// DayStatus distinguishes a day that was never played from one that is in progress.
type DayStatus int

const (
	DayUnplayed DayStatus = iota
	DayActive
	DayCompleted
)

func (s DayStatus) String() string {
	switch s {
	case DayUnplayed:
		return "unplayed"
	case DayActive:
		return "active"
	case DayCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// CalendarDay is a ledger record keyed by the UTC midnight timestamp of its day.
type CalendarDay struct {
	Key         int64      `json:"key"`
	LevelID     int        `json:"level_id"`
	State       LevelState `json:"state"`
	PlayedAt    time.Time  `json:"played_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Status maps a stored record to its three-way status.
func (d CalendarDay) Status() DayStatus {
	if d.State == StateCompleted {
		return DayCompleted
	}
	return DayActive
}

// PlayRecord is a single atomic write made when a day is entered.
// Day is nil when an existing record is being resumed.
type PlayRecord struct {
	Key int64
	Day *CalendarDay
}
