package daily

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/constants"
	"github.com/julianstephens/dailycal/internal/logger"
	"github.com/julianstephens/dailycal/internal/models"
	"github.com/julianstephens/dailycal/internal/storage"
)

// Ledger owns the persisted day records. All methods serialize on one mutex,
// so a Ledger is the single writer for its store within the process.
type Ledger struct {
	mu      sync.Mutex
	store   storage.Provider
	catalog Catalog
	starter Starter
	clock   Clock
	rand    Rand
}

func NewLedger(store storage.Provider, cat Catalog, starter Starter, clock Clock, rnd Rand) *Ledger {
	if clock == nil {
		clock = SystemClock{}
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Ledger{
		store:   store,
		catalog: cat,
		starter: starter,
		clock:   clock,
		rand:    rnd,
	}
}

// Assignment describes the level a day was started with.
type Assignment struct {
	Day       time.Time
	LevelID   int
	Mode      models.GameMode
	Route     string
	Resumed   bool
	SessionID uuid.UUID
}

// Now returns the ledger clock's current time in UTC.
func (l *Ledger) Now() time.Time {
	return l.clock.Now().UTC()
}

func (l *Ledger) record(key int64) (models.CalendarDay, bool, error) {
	day, ok, err := l.store.GetDay(key)
	if err != nil {
		return models.CalendarDay{}, false, fmt.Errorf("read day %s: %w", calendar.FormatDay(calendar.FromKey(key)), err)
	}
	return day, ok, nil
}

func (l *Ledger) month(ref time.Time) (first int64, days int, records map[int64]models.CalendarDay, err error) {
	first, days = calendar.MonthKeys(ref)
	records, err = l.store.GetDays(first, first+int64(days)*constants.SecondsPerDay)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("read month %s: %w", ref.UTC().Format("2006-01"), err)
	}
	return first, days, records, nil
}

// StateOf reports Completed only for a recorded, completed day. Unplayed
// days read as Active; use Lookup to tell them apart.
func (l *Ledger) StateOf(date time.Time) (models.LevelState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	day, ok, err := l.record(calendar.DayKey(date))
	if err != nil {
		return models.StateActive, err
	}
	if ok && day.State == models.StateCompleted {
		return models.StateCompleted, nil
	}
	return models.StateActive, nil
}

// Lookup returns the three-way status of date and its record when one exists.
func (l *Ledger) Lookup(date time.Time) (models.DayStatus, *models.CalendarDay, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	day, ok, err := l.record(calendar.DayKey(date))
	if err != nil {
		return models.DayUnplayed, nil, err
	}
	if !ok {
		return models.DayUnplayed, nil, nil
	}
	return day.Status(), &day, nil
}

// visibleDays is now's day-of-month inside now's month, the full month otherwise.
func visibleDays(ref, now time.Time) int {
	if calendar.SameYearMonth(ref, now) {
		return now.UTC().Day()
	}
	return calendar.DaysInMonthOf(ref)
}

// LastAvailableDayInMonth returns the latest visible day of ref's month that is
// unplayed or Active, or 0 when every visible day is Completed.
func (l *Ledger) LastAvailableDayInMonth(ref time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastAvailable(ref)
}

func (l *Ledger) lastAvailable(ref time.Time) (int, error) {
	first, _, records, err := l.month(ref)
	if err != nil {
		return 0, err
	}

	visible := visibleDays(ref, l.Now())
	last := 0
	for d := 1; d <= visible; d++ {
		rec, ok := records[first+int64(d-1)*constants.SecondsPerDay]
		if !ok || rec.State == models.StateActive {
			last = d
		}
	}
	return last, nil
}

// MonthProgress returns the completed fraction of ref's month in [0, 1].
// With previousStep set, one day's weight is removed from a non-zero result.
func (l *Ledger) MonthProgress(ref time.Time, previousStep bool) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, days, records, err := l.month(ref)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, rec := range records {
		if rec.State == models.StateCompleted {
			completed++
		}
	}
	if previousStep && completed > 0 {
		completed--
	}

	progress := float64(completed) / float64(days)
	return min(max(progress, 0), 1), nil
}

// AllDaysCompletedInMonth reports whether every day of ref's month is recorded
// and Completed.
func (l *Ledger) AllDaysCompletedInMonth(ref time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allCompleted(ref)
}

func (l *Ledger) allCompleted(ref time.Time) (bool, error) {
	first, days, records, err := l.month(ref)
	if err != nil {
		return false, err
	}
	for d := 0; d < days; d++ {
		rec, ok := records[first+int64(d)*constants.SecondsPerDay]
		if !ok || rec.State != models.StateCompleted {
			return false, nil
		}
	}
	return true, nil
}

// CreateOrResumeLevel starts date's level. An Active day keeps its level; an
// unplayed day is assigned the next catalog preset in order until the catalog
// has been played through, then a random one. The record and the last-played
// marker are written together before the starter is called.
//
// A Completed day returns ErrDayCompleted and leaves the store untouched.
func (l *Ledger) CreateOrResumeLevel(ctx context.Context, date time.Time) (Assignment, error) {
	a, err := l.assign(date)
	if err != nil {
		return Assignment{}, err
	}

	req := models.StartRequest{
		SessionID: a.SessionID,
		Route:     a.Route,
		Mode:      a.Mode,
		Origin:    constants.OriginDaily,
		LevelID:   a.LevelID,
		Day:       calendar.FormatDay(a.Day),
	}
	if err := l.starter.Start(ctx, req); err != nil {
		return a, fmt.Errorf("start level %d: %w", a.LevelID, err)
	}
	return a, nil
}

func (l *Ledger) assign(date time.Time) (Assignment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := calendar.DayKey(date)
	a := Assignment{
		Day:       calendar.FromKey(key),
		SessionID: uuid.New(),
	}
	log := logger.With("day", calendar.FormatDay(a.Day))

	existing, ok, err := l.record(key)
	if err != nil {
		return Assignment{}, err
	}

	rec := models.PlayRecord{Key: key}
	var preset models.Preset

	if ok {
		if existing.State == models.StateCompleted {
			log.Warn("refusing to restart completed day", "level", existing.LevelID)
			return Assignment{}, ErrDayCompleted
		}
		preset, err = l.catalog.Lookup(existing.LevelID)
		if err != nil {
			return Assignment{}, fmt.Errorf("resume level %d: %w", existing.LevelID, err)
		}
		a.Resumed = true
	} else {
		preset, err = l.pick()
		if err != nil {
			return Assignment{}, err
		}
		rec.Day = &models.CalendarDay{
			Key:      key,
			LevelID:  preset.LevelID,
			State:    models.StateActive,
			PlayedAt: l.Now(),
		}
	}

	route, err := RouteFor(preset.Mode)
	if err != nil {
		log.Error("preset has no route", "level", preset.LevelID, "mode", preset.Mode)
		return Assignment{}, err
	}

	if err := l.store.RecordPlay(rec); err != nil {
		return Assignment{}, fmt.Errorf("record play: %w", err)
	}

	a.LevelID = preset.LevelID
	a.Mode = preset.Mode
	a.Route = route
	log.Info("daily level started", "level", a.LevelID, "mode", a.Mode, "resumed", a.Resumed)
	return a, nil
}

// pick chooses the preset for a day that has never been played.
func (l *Ledger) pick() (models.Preset, error) {
	n := l.catalog.Len()
	if n == 0 {
		return models.Preset{}, errors.New("catalog has no presets")
	}

	played, err := l.store.GetPlayedDays()
	if err != nil {
		return models.Preset{}, fmt.Errorf("read played days: %w", err)
	}

	pos := played + 1
	if played >= n {
		pos = 1 + l.rand.IntN(n)
	}

	preset, err := l.catalog.At(pos)
	if err != nil {
		return models.Preset{}, fmt.Errorf("catalog position %d: %w", pos, err)
	}
	return preset, nil
}

// MarkCompleted moves date's record from Active to Completed.
func (l *Ledger) MarkCompleted(date time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := calendar.DayKey(date)
	existing, ok, err := l.record(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDayNotPlayed
	}
	if existing.State == models.StateCompleted {
		return ErrDayCompleted
	}

	if err := l.store.CompleteDay(key, l.Now()); err != nil {
		return fmt.Errorf("complete day: %w", err)
	}
	logger.Info("daily level completed", "day", calendar.FormatDay(calendar.FromKey(key)), "level", existing.LevelID)
	return nil
}

// LastPlayed returns the last-played marker without clearing it.
func (l *Ledger) LastPlayed() (time.Time, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastPlayed()
}

func (l *Ledger) lastPlayed() (time.Time, bool, error) {
	key, err := l.store.GetLastPlayed()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read last played: %w", err)
	}
	if key == 0 {
		return time.Time{}, false, nil
	}
	return calendar.FromKey(key), true, nil
}

// TakeLastPlayed returns the last-played marker and clears it.
func (l *Ledger) TakeLastPlayed() (time.Time, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok, err := l.lastPlayed()
	if err != nil || !ok {
		return t, ok, err
	}
	if err := l.store.SetLastPlayed(0); err != nil {
		return time.Time{}, false, fmt.Errorf("clear last played: %w", err)
	}
	return t, true, nil
}

// RegistrationDate returns the account creation date, zero when never set.
func (l *Ledger) RegistrationDate() (time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts, err := l.store.GetRegistrationDate()
	if err != nil {
		return time.Time{}, fmt.Errorf("read registration date: %w", err)
	}
	if ts == 0 {
		return time.Time{}, nil
	}
	return time.Unix(ts, 0).UTC(), nil
}

// Register stores the account creation date once.
func (l *Ledger) Register(at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SetRegistrationDate(at.UTC().Unix()); err != nil {
		return fmt.Errorf("set registration date: %w", err)
	}
	return nil
}

// PlayedDays returns how many distinct days have ever been played.
func (l *Ledger) PlayedDays() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.GetPlayedDays()
}

// Days returns every record in ref's month keyed by day of month.
func (l *Ledger) Days(ref time.Time) (map[int]models.CalendarDay, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	first, _, records, err := l.month(ref)
	if err != nil {
		return nil, err
	}
	out := make(map[int]models.CalendarDay, len(records))
	for key, rec := range records {
		out[int((key-first)/constants.SecondsPerDay)+1] = rec
	}
	return out, nil
}
