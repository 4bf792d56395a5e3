package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return loc
}

func TestValidateLeadBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateLead(now.Add(30*time.Second), now))
	assert.NoError(t, ValidateLead(now.Add(time.Hour), now))
	assert.ErrorIs(t, ValidateLead(now.Add(29*time.Second), now), ErrTooSoon)
	assert.ErrorIs(t, ValidateLead(now.Add(-time.Minute), now), ErrTooSoon)
}

func TestResolve(t *testing.T) {
	loc := moscow(t)
	// 23:30 in Moscow is still the same calendar day locally even though UTC differs.
	now := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)

	got, err := Resolve("today_10", now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, loc), got)

	got, err = Resolve("tomorrow_19", now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 19, 0, 0, 0, loc), got)

	for _, bad := range []string{"", "manual", "today_11", "yesterday_10", "today_x"} {
		_, err := Resolve(bad, now, loc)
		assert.ErrorIs(t, err, ErrUnknownPick, bad)
	}
}

func TestQuickPicks(t *testing.T) {
	loc := moscow(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, loc)

	picks := QuickPicks(now, loc)
	require.Len(t, picks, 6)

	codes := make([]string, 0, len(picks))
	for _, p := range picks {
		codes = append(codes, p.Code)
		resolved, err := Resolve(p.Code, now, loc)
		require.NoError(t, err)
		assert.Equal(t, resolved, p.RunAt)
	}
	assert.Equal(t, []string{"today_10", "today_14", "today_19", "tomorrow_10", "tomorrow_14", "tomorrow_19"}, codes)
}

func TestParseManual(t *testing.T) {
	loc := moscow(t)

	got, err := ParseManual(" 05.04.2026 18:45 ", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 5, 18, 45, 0, 0, loc), got)
	assert.Equal(t, "05.04.2026 18:45", Format(got, loc))

	for _, bad := range []string{"2026-04-05 18:45", "5.4.26 18:45", "31.02.2026 10:00", "tomorrow"} {
		_, err := ParseManual(bad, loc)
		assert.ErrorIs(t, err, ErrBadFormat, bad)
	}
}
