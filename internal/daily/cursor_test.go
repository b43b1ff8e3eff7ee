package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/dailycal/internal/models"
)

func TestInitializeInRegistrationMonthStaysOnToday(t *testing.T) {
	f := newFixture(t, date(2024, time.March, 15).Add(10*time.Hour), date(2024, time.March, 1))
	c := NewCursor(f.ledger)

	require.NoError(t, c.Initialize())
	assert.Equal(t, date(2024, time.March, 15), c.Viewed())

	last, err := f.ledger.LastAvailableDayInMonth(c.Viewed())
	require.NoError(t, err)
	assert.Equal(t, 15, last)

	progress, err := f.ledger.MonthProgress(c.Viewed(), false)
	require.NoError(t, err)
	assert.Zero(t, progress)
}

func TestInitializeAfterCompletedMonthStaysOnToday(t *testing.T) {
	f := newFixture(t, date(2024, time.April, 1).Add(2*time.Hour), date(2024, time.March, 3))
	f.seed(t, models.StateCompleted, daysOf(2024, time.March, 1, 31)...)

	c := NewCursor(f.ledger)
	c.viewed = date(2024, time.March, 31)
	assert.True(t, c.CanGoToNextMonth())

	require.NoError(t, c.Initialize())
	assert.Equal(t, date(2024, time.April, 1), c.Viewed())
}

func TestInitializePrefersLastPlayedMarker(t *testing.T) {
	f := newFixture(t, date(2024, time.May, 20), date(2024, time.January, 1))
	require.NoError(t, f.store.SetLastPlayed(date(2024, time.February, 11).Unix()))

	c := NewCursor(f.ledger)
	require.NoError(t, c.Initialize())
	assert.Equal(t, date(2024, time.February, 11), c.Viewed())

	_, ok, err := f.ledger.LastPlayed()
	require.NoError(t, err)
	assert.True(t, ok, "initialize must not consume the marker")
}

func TestInitializeWalksBackToAnOpenMonth(t *testing.T) {
	f := newFixture(t, date(2024, time.March, 10).Add(20*time.Hour), date(2024, time.January, 15))
	f.seed(t, models.StateCompleted, daysOf(2024, time.March, 1, 10)...)
	f.seed(t, models.StateCompleted, daysOf(2024, time.February, 1, 29)...)

	c := NewCursor(f.ledger)
	require.NoError(t, c.Initialize())
	assert.Equal(t, time.January, c.Viewed().Month())
	assert.Equal(t, 2024, c.Viewed().Year())
}

func TestInitializeCompletedRegistrationMonthWalksBack(t *testing.T) {
	f := newFixture(t, date(2024, time.February, 29), date(2024, time.February, 2))
	f.seed(t, models.StateCompleted, daysOf(2024, time.February, 1, 29)...)

	c := NewCursor(f.ledger)
	require.NoError(t, c.Initialize())
	assert.Equal(t, date(2024, time.January, 29), c.Viewed())
}

func TestSetViewedDay(t *testing.T) {
	f := newFixture(t, date(2024, time.March, 15), date(2024, time.January, 1))
	c := NewCursor(f.ledger)

	c.SetViewedDay(3)
	assert.Equal(t, date(2024, time.March, 3), c.Viewed())
	c.SetViewedDay(31)
	assert.Equal(t, date(2024, time.March, 31), c.Viewed())
}

func TestStepMonthClampsDay(t *testing.T) {
	f := newFixture(t, date(2024, time.March, 15), date(2023, time.January, 1))
	c := NewCursor(f.ledger)
	c.viewed = date(2024, time.January, 31)

	c.StepMonth(1)
	assert.Equal(t, date(2024, time.February, 29), c.Viewed())
	c.StepMonth(-1)
	assert.Equal(t, date(2024, time.January, 29), c.Viewed())
	c.StepMonth(-1)
	assert.Equal(t, date(2023, time.December, 29), c.Viewed())
}

func TestCanGoToPreviousMonth(t *testing.T) {
	f := newFixture(t, date(2024, time.March, 15), date(2024, time.February, 10))
	c := NewCursor(f.ledger)

	ok, err := c.CanGoToPreviousMonth()
	require.NoError(t, err)
	assert.True(t, ok, "March is after the February registration")

	c.StepMonth(-1)
	ok, err = c.CanGoToPreviousMonth()
	require.NoError(t, err)
	assert.False(t, ok, "registration month with open days")

	f.seed(t, models.StateCompleted, daysOf(2024, time.February, 1, 29)...)
	ok, err = c.CanGoToPreviousMonth()
	require.NoError(t, err)
	assert.True(t, ok, "a completed month can be browsed back from")
}

func TestCanGoToNextMonth(t *testing.T) {
	f := newFixture(t, date(2024, time.March, 15), date(2023, time.June, 1))
	c := NewCursor(f.ledger)

	assert.False(t, c.CanGoToNextMonth())
	c.StepMonth(-1)
	assert.True(t, c.CanGoToNextMonth())
	c.StepMonth(-12)
	assert.True(t, c.CanGoToNextMonth())
}
