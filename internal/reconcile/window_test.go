package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clock(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestWindow_SameDay(t *testing.T) {
	w, err := ParseWindow("09:00", "17:00")
	assert.NoError(t, err)

	assert.False(t, w.Contains(clock(8, 59)))
	assert.True(t, w.Contains(clock(9, 0))) // inclusive start
	assert.True(t, w.Contains(clock(12, 0)))
	assert.True(t, w.Contains(clock(17, 0))) // inclusive end
	assert.False(t, w.Contains(clock(17, 1)))
}

func TestWindow_OvernightWrap(t *testing.T) {
	w, err := ParseWindow("22:00", "06:00")
	assert.NoError(t, err)

	assert.True(t, w.Contains(clock(23, 30)))
	assert.True(t, w.Contains(clock(5, 30)))
	assert.False(t, w.Contains(clock(12, 0)))
	assert.True(t, w.Contains(clock(22, 0)))
	assert.True(t, w.Contains(clock(6, 0)))
	assert.False(t, w.Contains(clock(6, 1)))
}

func TestParseWindow_MissingTimesMeanNoWindow(t *testing.T) {
	w, err := ParseWindow("", "17:00")
	assert.NoError(t, err)
	assert.Nil(t, w)

	w, err = ParseWindow("09:00", "")
	assert.NoError(t, err)
	assert.Nil(t, w)
}

func TestParseWindow_Invalid(t *testing.T) {
	_, err := ParseWindow("25:00", "17:00")
	assert.Error(t, err)

	_, err = ParseWindow("09:00", "bogus")
	assert.Error(t, err)
}
