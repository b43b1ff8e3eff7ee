package daily

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/countdown"
	"github.com/julianstephens/dailycal/internal/logger"
	"github.com/julianstephens/dailycal/internal/models"
)

// DayView is one cell of the month grid.
type DayView struct {
	Day     int
	Date    time.Time
	Status  models.DayStatus
	Visible bool
	Today   bool
}

// MonthView is everything a renderer needs to draw the viewed month.
type MonthView struct {
	Month       time.Time
	Viewed      time.Time
	DaysInMonth int
	VisibleDays int
	Days        []DayView

	Progress float64
	// PreviousProgress is the progress before the resumed day was completed;
	// it equals Progress when nothing was just completed.
	PreviousProgress float64

	// ScrollTarget is the last available day, or the last visible day when
	// the month has none left.
	ScrollTarget int

	// Resumed is the day of the consumed last-played marker, 0 when none.
	Resumed          int
	ResumedCompleted bool
	// NextAvailable is set after a completed resume when the month still has
	// an open day.
	NextAvailable int

	CanGoPrev bool
	CanGoNext bool

	// NextDayAt is the next UTC midnight while viewing the current month.
	NextDayAt time.Time
}

// DaySelection is the info panel of a selected day.
type DaySelection struct {
	Date   time.Time
	Today  bool
	Status models.DayStatus
}

// PlayOutcome reports what Play did. AllCompleted means nothing is left to
// play and the caller should return to the main game mode.
type PlayOutcome struct {
	Assignment   *Assignment
	AllCompleted bool
	// View is set when Play moved the cursor to another month.
	View *MonthView
}

// Hooks receive countdown events. Both run on the countdown goroutine.
type Hooks struct {
	OnTick      func(remaining time.Duration)
	OnDayChange func(view MonthView, err error)
}

// Lobby drives the daily calendar screen: view building, navigation, the play
// button and the next-day countdown.
type Lobby struct {
	mu     sync.Mutex
	ledger *Ledger
	cursor *Cursor
	timer  *countdown.Timer
	hooks  Hooks
	closed bool
}

// NewLobby returns a Lobby. A nil timer disables the countdown.
func NewLobby(ledger *Ledger, timer *countdown.Timer, hooks Hooks) *Lobby {
	return &Lobby{
		ledger: ledger,
		cursor: NewCursor(ledger),
		timer:  timer,
		hooks:  hooks,
	}
}

// Cursor exposes the lobby's cursor.
func (l *Lobby) Cursor() *Cursor {
	return l.cursor
}

// Show initializes the cursor and builds the first view.
func (l *Lobby) Show() (MonthView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.cursor.Initialize(); err != nil {
		return MonthView{}, err
	}
	return l.refresh()
}

// Refresh rebuilds the view of the viewed month.
func (l *Lobby) Refresh() (MonthView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refresh()
}

// Close stops the countdown for good. A refresh already in flight from an
// expiring countdown will not restart it.
func (l *Lobby) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
	}
}

func (l *Lobby) refresh() (MonthView, error) {
	now := l.ledger.Now()
	viewed := l.cursor.Viewed()
	current := calendar.SameYearMonth(viewed, now)

	v := MonthView{
		Month:       calendar.StartOfMonth(viewed),
		Viewed:      viewed,
		DaysInMonth: calendar.DaysInMonthOf(viewed),
		VisibleDays: visibleDays(viewed, now),
	}

	records, err := l.ledger.Days(viewed)
	if err != nil {
		return MonthView{}, err
	}
	v.Days = make([]DayView, v.DaysInMonth)
	for d := 1; d <= v.DaysInMonth; d++ {
		dv := DayView{
			Day:     d,
			Date:    calendar.WithDay(viewed, d),
			Status:  models.DayUnplayed,
			Visible: d <= v.VisibleDays,
			Today:   current && d == now.Day(),
		}
		if rec, ok := records[d]; ok {
			dv.Status = rec.Status()
		}
		v.Days[d-1] = dv
	}

	last, err := l.ledger.LastAvailableDayInMonth(viewed)
	if err != nil {
		return MonthView{}, err
	}
	v.ScrollTarget = last
	if last == 0 {
		v.ScrollTarget = v.VisibleDays
	}

	if v.Progress, err = l.ledger.MonthProgress(viewed, false); err != nil {
		return MonthView{}, err
	}
	v.PreviousProgress = v.Progress

	if err := l.consumeMarker(&v, last); err != nil {
		return MonthView{}, err
	}

	if v.CanGoPrev, err = l.cursor.CanGoToPreviousMonth(); err != nil {
		return MonthView{}, err
	}
	v.CanGoNext = l.cursor.CanGoToNextMonth()

	if current {
		v.NextDayAt = calendar.Midnight(now).AddDate(0, 0, 1)
		if l.timer != nil && !l.closed {
			l.timer.Restart(v.NextDayAt, l.hooks.OnTick, l.dayChanged)
		}
	} else if l.timer != nil {
		l.timer.Stop()
	}

	return v, nil
}

// consumeMarker applies a pending last-played marker to v and clears it.
func (l *Lobby) consumeMarker(v *MonthView, last int) error {
	marker, ok, err := l.ledger.TakeLastPlayed()
	if err != nil || !ok {
		return err
	}

	v.Resumed = marker.Day()
	v.ScrollTarget = v.Resumed

	state, err := l.ledger.StateOf(calendar.WithDay(v.Viewed, v.Resumed))
	if err != nil {
		return err
	}
	if state != models.StateCompleted {
		return nil
	}

	v.ResumedCompleted = true
	v.NextAvailable = last
	v.PreviousProgress, err = l.ledger.MonthProgress(v.Viewed, true)
	return err
}

func (l *Lobby) dayChanged() {
	logger.Info("day boundary crossed")
	view, err := l.Refresh()
	if l.hooks.OnDayChange != nil {
		l.hooks.OnDayChange(view, err)
	}
}

// PrevMonth moves one month back when the cursor allows it.
func (l *Lobby) PrevMonth() (MonthView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ok, err := l.cursor.CanGoToPreviousMonth()
	if err != nil {
		return MonthView{}, err
	}
	if !ok {
		return MonthView{}, fmt.Errorf("%w: %s is the earliest month", ErrNavigationBlocked, l.cursor.Viewed().Format("January 2006"))
	}
	l.cursor.StepMonth(-1)
	return l.refresh()
}

// NextMonth moves one month forward when the cursor allows it.
func (l *Lobby) NextMonth() (MonthView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.cursor.CanGoToNextMonth() {
		return MonthView{}, fmt.Errorf("%w: %s is the current month", ErrNavigationBlocked, l.cursor.Viewed().Format("January 2006"))
	}
	l.cursor.StepMonth(1)
	return l.refresh()
}

// SelectDay moves the cursor to a visible day of the viewed month.
func (l *Lobby) SelectDay(day int) (DaySelection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	visible := visibleDays(l.cursor.Viewed(), l.ledger.Now())
	if day < 1 || day > visible {
		return DaySelection{}, fmt.Errorf("%w: %d not in 1..%d", ErrDayOutOfRange, day, visible)
	}

	l.cursor.SetViewedDay(day)
	date := l.cursor.Viewed()
	status, _, err := l.ledger.Lookup(date)
	if err != nil {
		return DaySelection{}, err
	}

	return DaySelection{
		Date:   date,
		Today:  date.Equal(calendar.Midnight(l.ledger.Now())),
		Status: status,
	}, nil
}

// Play starts the viewed day when it is open. Otherwise it falls back to the
// last available day of the month, then to the most recent month with an
// available day. When nothing is left it reports AllCompleted.
func (l *Lobby) Play(ctx context.Context) (PlayOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	viewed := l.cursor.Viewed()
	last, err := l.ledger.LastAvailableDayInMonth(viewed)
	if err != nil {
		return PlayOutcome{}, err
	}

	if last != 0 {
		open, err := l.isOpen(viewed)
		if err != nil {
			return PlayOutcome{}, err
		}
		if !open {
			l.cursor.SetViewedDay(last)
		}
		return l.start(ctx, nil)
	}

	if err := l.cursor.Initialize(); err != nil {
		return PlayOutcome{}, err
	}
	if calendar.SameYearMonth(viewed, l.cursor.Viewed()) {
		logger.Info("no daily level left to play", "month", viewed.Format("2006-01"))
		return PlayOutcome{AllCompleted: true}, nil
	}

	view, err := l.refresh()
	if err != nil {
		return PlayOutcome{}, err
	}
	if last, err = l.ledger.LastAvailableDayInMonth(l.cursor.Viewed()); err != nil {
		return PlayOutcome{}, err
	}
	if last == 0 {
		logger.Warn("no open day in the fallback month", "month", l.cursor.Viewed().Format("2006-01"))
		return PlayOutcome{AllCompleted: true}, nil
	}
	l.cursor.SetViewedDay(last)
	return l.start(ctx, &view)
}

// isOpen reports whether date is visible and not completed.
func (l *Lobby) isOpen(date time.Time) (bool, error) {
	if date.Day() > visibleDays(date, l.ledger.Now()) {
		return false, nil
	}
	state, err := l.ledger.StateOf(date)
	if err != nil {
		return false, err
	}
	return state == models.StateActive, nil
}

func (l *Lobby) start(ctx context.Context, view *MonthView) (PlayOutcome, error) {
	a, err := l.ledger.CreateOrResumeLevel(ctx, l.cursor.Viewed())
	if err != nil {
		return PlayOutcome{View: view}, err
	}
	return PlayOutcome{Assignment: &a, View: view}, nil
}
