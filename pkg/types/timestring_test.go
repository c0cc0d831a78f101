package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("not a time")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_OnDate(t *testing.T) {
	date := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	at, err := TimeString("10:45").OnDate(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 15, 10, 45, 0, 0, time.UTC), at)

	_, err = TimeString("bad").OnDate(date)
	assert.Error(t, err)
}

func TestTimeString_Ordering(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("18:00"))
	assert.True(t, TimeString("18:30").IsAfter("18:00"))
	assert.False(t, TimeString("18:00").IsAfter("18:00"))
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts, err := TimeString("23:30").AddMinutes(15)
	require.NoError(t, err)
	assert.Equal(t, "23:45", ts.String())

	_, err = TimeString("23:30").AddMinutes(45)
	assert.Error(t, err)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("14:00"))
	assert.Equal(t, "14:00", ts.String())

	require.NoError(t, ts.Scan(time.Date(2026, 1, 1, 8, 15, 0, 0, time.UTC)))
	assert.Equal(t, "08:15", ts.String())

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())
}
