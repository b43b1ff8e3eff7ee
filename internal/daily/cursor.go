package daily

import (
	"time"

	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/logger"
)

// maxMonthSearch bounds the backward search in Initialize.
var maxMonthSearch = 1200

// Cursor is the viewed date of the month grid. It is always a UTC midnight.
type Cursor struct {
	ledger *Ledger
	viewed time.Time
}

func NewCursor(ledger *Ledger) *Cursor {
	return &Cursor{
		ledger: ledger,
		viewed: calendar.Midnight(ledger.Now()),
	}
}

// Viewed returns the viewed date.
func (c *Cursor) Viewed() time.Time {
	return c.viewed
}

// Initialize derives the viewed date. A pending last-played marker wins.
// Otherwise the cursor starts at today and, unless today's month is the
// registration month with days still open, walks back to the most recent
// month that has an available day.
func (c *Cursor) Initialize() error {
	marker, ok, err := c.ledger.LastPlayed()
	if err != nil {
		return err
	}
	if ok {
		c.viewed = marker
		return nil
	}

	now := c.ledger.Now()
	c.viewed = calendar.Midnight(now)

	reg, err := c.ledger.RegistrationDate()
	if err != nil {
		return err
	}
	completed, err := c.ledger.AllDaysCompletedInMonth(c.viewed)
	if err != nil {
		return err
	}
	if !calendar.AfterByYearMonth(now, reg) && !completed {
		return nil
	}

	for i := 0; i < maxMonthSearch; i++ {
		last, err := c.ledger.LastAvailableDayInMonth(c.viewed)
		if err != nil {
			return err
		}
		if last != 0 {
			return nil
		}
		c.viewed = calendar.AddMonths(c.viewed, -1)
	}

	logger.Warn("no month with an available day found", "searched", maxMonthSearch)
	c.viewed = calendar.Midnight(now)
	return nil
}

// SetViewedDay moves to day within the viewed month. Callers pass in-range days.
func (c *Cursor) SetViewedDay(day int) {
	c.viewed = calendar.WithDay(c.viewed, day)
}

// StepMonth moves the viewed date by delta months, clamping the day.
func (c *Cursor) StepMonth(delta int) {
	c.viewed = calendar.AddMonths(c.viewed, delta)
}

// CanGoToPreviousMonth is true after the registration month, or inside a
// fully completed month.
func (c *Cursor) CanGoToPreviousMonth() (bool, error) {
	reg, err := c.ledger.RegistrationDate()
	if err != nil {
		return false, err
	}
	if calendar.AfterByYearMonth(c.viewed, reg) {
		return true, nil
	}
	return c.ledger.AllDaysCompletedInMonth(c.viewed)
}

// CanGoToNextMonth is true while the viewed month is before the current one.
func (c *Cursor) CanGoToNextMonth() bool {
	return calendar.BeforeByYearMonth(c.viewed, c.ledger.Now())
}
