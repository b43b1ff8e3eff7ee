// Package storagetest runs the storage.Provider contract against a backend.
package storagetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/dailycal/internal/models"
	"github.com/julianstephens/dailycal/internal/storage"
)

const day = int64(86400)

// base is 2024-03-01 00:00 UTC.
const base = int64(1709251200)

// Run exercises a fresh, initialized Provider returned by open. Each subtest
// gets its own store.
func Run(t *testing.T, open func(t *testing.T) storage.Provider) {
	t.Run("EmptyProfile", func(t *testing.T) {
		s := open(t)
		reg, err := s.GetRegistrationDate()
		require.NoError(t, err)
		assert.Zero(t, reg)
		last, err := s.GetLastPlayed()
		require.NoError(t, err)
		assert.Zero(t, last)
		n, err := s.GetPlayedDays()
		require.NoError(t, err)
		assert.Zero(t, n)
		days, err := s.GetAllDays()
		require.NoError(t, err)
		assert.Empty(t, days)
	})

	t.Run("RegistrationDateIsWriteOnce", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SetRegistrationDate(base))
		require.NoError(t, s.SetRegistrationDate(base))
		assert.ErrorIs(t, s.SetRegistrationDate(base+day), storage.ErrRegistrationSet)
		reg, err := s.GetRegistrationDate()
		require.NoError(t, err)
		assert.Equal(t, base, reg)
	})

	t.Run("RecordPlayInsertsAndCounts", func(t *testing.T) {
		s := open(t)
		playedAt := time.Unix(base+3600, 0).UTC()
		rec := models.PlayRecord{Key: base, Day: &models.CalendarDay{
			Key: base, LevelID: 7, State: models.StateActive, PlayedAt: playedAt,
		}}
		require.NoError(t, s.RecordPlay(rec))

		got, ok, err := s.GetDay(base)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 7, got.LevelID)
		assert.Equal(t, models.StateActive, got.State)
		assert.True(t, playedAt.Equal(got.PlayedAt))
		assert.Nil(t, got.CompletedAt)

		n, err := s.GetPlayedDays()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		last, err := s.GetLastPlayed()
		require.NoError(t, err)
		assert.Equal(t, base, last)
	})

	t.Run("RecordPlayRejectsDuplicate", func(t *testing.T) {
		s := open(t)
		first := models.PlayRecord{Key: base, Day: &models.CalendarDay{Key: base, LevelID: 1, PlayedAt: time.Unix(base, 0).UTC()}}
		require.NoError(t, s.RecordPlay(first))
		require.NoError(t, s.SetLastPlayed(0))

		dup := models.PlayRecord{Key: base, Day: &models.CalendarDay{Key: base, LevelID: 2, PlayedAt: time.Unix(base, 0).UTC()}}
		assert.ErrorIs(t, s.RecordPlay(dup), storage.ErrDayExists)

		got, _, err := s.GetDay(base)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LevelID)
		n, err := s.GetPlayedDays()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		last, err := s.GetLastPlayed()
		require.NoError(t, err)
		assert.Zero(t, last, "failed write must not move the marker")
	})

	t.Run("ResumeOnlyMovesMarker", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.RecordPlay(models.PlayRecord{Key: base, Day: &models.CalendarDay{Key: base, LevelID: 3, PlayedAt: time.Unix(base, 0).UTC()}}))
		require.NoError(t, s.SetLastPlayed(0))
		require.NoError(t, s.RecordPlay(models.PlayRecord{Key: base}))

		n, err := s.GetPlayedDays()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		last, err := s.GetLastPlayed()
		require.NoError(t, err)
		assert.Equal(t, base, last)
	})

	t.Run("CompleteDay", func(t *testing.T) {
		s := open(t)
		assert.ErrorIs(t, s.CompleteDay(base, time.Unix(base, 0)), storage.ErrDayNotFound)

		require.NoError(t, s.RecordPlay(models.PlayRecord{Key: base, Day: &models.CalendarDay{Key: base, LevelID: 4, PlayedAt: time.Unix(base, 0).UTC()}}))
		at := time.Unix(base+7200, 0).UTC()
		require.NoError(t, s.CompleteDay(base, at))

		got, ok, err := s.GetDay(base)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.StateCompleted, got.State)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, at.Equal(*got.CompletedAt))
		assert.Equal(t, models.DayCompleted, got.Status())
	})

	t.Run("GetDaysIsHalfOpen", func(t *testing.T) {
		s := open(t)
		for i := int64(0); i < 5; i++ {
			key := base + i*day
			require.NoError(t, s.RecordPlay(models.PlayRecord{Key: key, Day: &models.CalendarDay{Key: key, LevelID: int(i) + 1, PlayedAt: time.Unix(key, 0).UTC()}}))
		}

		got, err := s.GetDays(base+day, base+4*day)
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Contains(t, got, base+day)
		assert.Contains(t, got, base+3*day)
		assert.NotContains(t, got, base+4*day)

		all, err := s.GetAllDays()
		require.NoError(t, err)
		require.Len(t, all, 5)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].Key, all[i].Key)
		}
		n, err := s.GetPlayedDays()
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("LastPlayedRoundTrip", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SetLastPlayed(base+2*day))
		last, err := s.GetLastPlayed()
		require.NoError(t, err)
		assert.Equal(t, base+2*day, last)
		require.NoError(t, s.SetLastPlayed(0))
		last, err = s.GetLastPlayed()
		require.NoError(t, err)
		assert.Zero(t, last)
	})
}
