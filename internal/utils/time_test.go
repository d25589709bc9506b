package utils

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISO8601(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name    string
		value   string
		loc     *time.Location
		want    time.Time
		wantErr error
	}{
		{
			name:  "utc offset",
			value: "2030-05-01T09:00:00Z",
			loc:   shanghai,
			want:  time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "explicit offset",
			value: "2030-05-01T09:00:00+08:00",
			loc:   time.UTC,
			want:  time.Date(2030, 5, 1, 1, 0, 0, 0, time.UTC),
		},
		{
			name:  "local wall clock",
			value: "2030-05-01T09:00:00",
			loc:   shanghai,
			want:  time.Date(2030, 5, 1, 1, 0, 0, 0, time.UTC),
		},
		{
			name:  "local wall clock without seconds",
			value: "2030-05-01T09:30",
			loc:   time.UTC,
			want:  time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			name:    "not iso",
			value:   "05/01/2030 09:00",
			loc:     time.UTC,
			wantErr: ErrInvalidISO8601,
		},
		{
			name:    "out of range day",
			value:   "2030-02-30T09:00:00Z",
			loc:     time.UTC,
			wantErr: ErrInvalidISO8601,
		},
		{
			name:    "skipped by daylight saving",
			value:   "2030-03-10T02:30:00",
			loc:     newYork,
			wantErr: ErrNonexistentTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISO8601(tt.value, tt.loc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	assert.True(t, Overlaps(at(0), at(2), at(1), at(3)))
	assert.True(t, Overlaps(at(0), at(4), at(1), at(2)))
	assert.False(t, Overlaps(at(0), at(1), at(1), at(2)), "touching half-open intervals do not overlap")
	assert.False(t, Overlaps(at(0), at(1), at(2), at(3)))

	assert.True(t, OverlapsInclusive(at(0), at(1), at(1), at(2)), "touching edges count as overlap")
	assert.False(t, OverlapsInclusive(at(0), at(1), at(2), at(3)))
}

func TestSameDay(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	a := time.Date(2030, 1, 1, 15, 0, 0, 0, time.UTC)  // 上海 23:00
	b := time.Date(2030, 1, 1, 16, 30, 0, 0, time.UTC) // 上海次日 00:30

	assert.True(t, SameDay(a, b, time.UTC))
	assert.False(t, SameDay(a, b, shanghai))
}

func TestResolveTimezone(t *testing.T) {
	assert.Equal(t, "Asia/Shanghai", ResolveTimezone("Asia/Shanghai", "UTC").String())
	assert.Equal(t, "Europe/Berlin", ResolveTimezone("", "Europe/Berlin").String())
	assert.Equal(t, "Europe/Berlin", ResolveTimezone("Not/AZone", "Europe/Berlin").String())
	assert.Equal(t, "UTC", ResolveTimezone("Not/AZone", "Also/NotAZone").String())
}

func TestValidateMonthYear(t *testing.T) {
	assert.NoError(t, ValidateMonthYear(1, 2030))
	assert.NoError(t, ValidateMonthYear(12, 2030))
	assert.Error(t, ValidateMonthYear(0, 2030))
	assert.Error(t, ValidateMonthYear(13, 2030))
	assert.Error(t, ValidateMonthYear(5, 1900))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(12, 2030, time.UTC)
	assert.Equal(t, time.Date(2030, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
