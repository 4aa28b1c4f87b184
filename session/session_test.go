package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 3, 4, hour, min, 0, 0, time.UTC)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("07:30-16:00")
	require.NoError(t, err)
	assert.True(t, w.Contains(at(7, 30)))
	assert.True(t, w.Contains(at(15, 59)))
	assert.False(t, w.Contains(at(16, 0)))
	assert.False(t, w.Contains(at(7, 29)))
}

func TestParseWindowRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "07:30", "7h30-16h00", "25:00-26:00", "07:61-08:00"} {
		_, err := ParseWindow(s)
		assert.Error(t, err, "window %q", s)
	}
}

func TestWindowOvernightWrap(t *testing.T) {
	w, err := ParseWindow("22:00-06:00")
	require.NoError(t, err)
	assert.True(t, w.Contains(at(23, 0)))
	assert.True(t, w.Contains(at(2, 0)))
	assert.False(t, w.Contains(at(12, 0)))
	assert.False(t, w.Contains(at(6, 0)))
}

func TestGateSessionAndNews(t *testing.T) {
	g, err := NewGate("UTC", []string{"08:00-17:00"}, []string{"14:25-14:40"})
	require.NoError(t, err)

	assert.True(t, g.IsSessionOpen(at(9, 0)))
	assert.False(t, g.IsSessionOpen(at(18, 0)))

	assert.True(t, g.IsNewsBlackout(at(14, 30)))
	assert.False(t, g.IsNewsBlackout(at(14, 45)))
}

func TestGateEmptyWindows(t *testing.T) {
	g, err := NewGate("UTC", nil, nil)
	require.NoError(t, err)
	assert.True(t, g.IsSessionOpen(at(3, 0)))
	assert.False(t, g.IsNewsBlackout(at(3, 0)))
}

func TestGateFailsFastOnBadConfig(t *testing.T) {
	_, err := NewGate("UTC", []string{"nonsense"}, nil)
	assert.Error(t, err)

	_, err = NewGate("Atlantis/Nowhere", []string{"08:00-17:00"}, nil)
	assert.Error(t, err)

	_, err = NewGate("UTC", []string{"08:00-17:00"}, []string{"14:61-15:00"})
	assert.Error(t, err)
}

func TestGateTimezoneNormalization(t *testing.T) {
	g, err := NewGate("America/New_York", []string{"09:30-16:00"}, nil)
	require.NoError(t, err)

	// 15:00 UTC on a March date after the DST switch is 11:00 in New York.
	utc := time.Date(2024, 3, 18, 15, 0, 0, 0, time.UTC)
	assert.True(t, g.IsSessionOpen(utc))

	// 02:00 UTC is 22:00 the prior evening in New York: closed.
	assert.False(t, g.IsSessionOpen(time.Date(2024, 3, 18, 2, 0, 0, 0, time.UTC)))
}
