package service

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindow(t *testing.T) {
	t.Run("utc midnight boundaries", func(t *testing.T) {
		start, end := DayWindow(time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC), time.UTC)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("midnight belongs to the new day", func(t *testing.T) {
		start, _ := DayWindow(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), time.UTC)
		assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("nil location means utc", func(t *testing.T) {
		start, _ := DayWindow(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), nil)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("dst day is 23 hours long", func(t *testing.T) {
		loc, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		start, end := DayWindow(time.Date(2024, 3, 31, 12, 0, 0, 0, loc), loc)
		assert.Equal(t, 23*time.Hour, end.Sub(start))
	})
}

func TestGetNextResetTime(t *testing.T) {
	next := GetNextResetTime(time.Date(2024, 12, 31, 18, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestValidationError_Message(t *testing.T) {
	err := ValidateAmount(0, 100)
	require.Error(t, err)
	assert.Equal(t, "amount out of range: Amount must be greater than 0", err.Error())

	err = ValidateAmount(101, 100)
	require.Error(t, err)
	assert.Equal(t, "amount out of range: Amount must be less or equal to 100", err.Error())

	assert.NoError(t, ValidateAmount(100, 100))
}
