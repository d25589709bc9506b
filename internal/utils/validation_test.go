package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

func TestValidateShiftSegments(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		segments []domain.ShiftSegment
		wantLen  int
		wantErr  string
	}{
		{
			name: "two valid segments on different days",
			segments: []domain.ShiftSegment{
				{IsVisible: true, Start: "2030-01-02T09:00:00Z", Duration: 8 * 3600},
				{IsVisible: false, IsReoccurring: true, Start: "2030-01-03T09:00:00Z", Duration: 4 * 3600},
			},
			wantLen: 2,
		},
		{
			name: "two segments on the same day without overlap",
			segments: []domain.ShiftSegment{
				{Start: "2030-01-02T09:00:00Z", Duration: 3600},
				{Start: "2030-01-02T11:00:00Z", Duration: 3600},
			},
			wantLen: 2,
		},
		{
			name:     "empty batch",
			segments: nil,
			wantErr:  "至少需要提交一个班次",
		},
		{
			name: "not iso",
			segments: []domain.ShiftSegment{
				{Start: "tomorrow 9am", Duration: 3600},
			},
			wantErr: "ISO 8601",
		},
		{
			name: "in the past",
			segments: []domain.ShiftSegment{
				{Start: "2029-12-31T09:00:00Z", Duration: 3600},
			},
			wantErr: "不能早于当前时间",
		},
		{
			name: "exactly now",
			segments: []domain.ShiftSegment{
				{Start: "2030-01-01T00:00:00Z", Duration: 3600},
			},
			wantErr: "不能早于当前时间",
		},
		{
			name: "spans midnight",
			segments: []domain.ShiftSegment{
				{Start: "2030-01-02T20:00:00Z", Duration: 6 * 3600},
			},
			wantErr: "不能跨天",
		},
		{
			name: "longer than a day",
			segments: []domain.ShiftSegment{
				{Start: "2030-01-02T00:00:00Z", Duration: 2 * secondsPerDay},
			},
			wantErr: "不能跨天",
		},
		{
			name: "zero duration",
			segments: []domain.ShiftSegment{
				{Start: "2030-01-02T09:00:00Z", Duration: 0},
			},
			wantErr: "必须大于 0",
		},
		{
			name: "identical segments",
			segments: []domain.ShiftSegment{
				{Start: "2030-01-02T09:00:00Z", Duration: 3600},
				{Start: "2030-01-02T09:00:00Z", Duration: 3600},
			},
			wantErr: "重叠",
		},
		{
			name: "touching segments",
			segments: []domain.ShiftSegment{
				{Start: "2030-01-02T09:00:00Z", Duration: 3600},
				{Start: "2030-01-02T10:00:00Z", Duration: 3600},
			},
			wantErr: "重叠",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			periods, err := ValidateShiftSegments(tt.segments, now, time.UTC)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, periods, tt.wantLen)
		})
	}
}

func TestValidateShiftSegmentsKeepsOrderAndSameDay(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	segments := []domain.ShiftSegment{
		{IsVisible: true, Start: "2030-01-05T13:00:00", Duration: 2 * 3600},
		{IsVisible: false, Start: "2030-01-04T09:00:00", Duration: 3 * 3600},
		{IsVisible: true, IsReoccurring: true, Start: "2030-01-05T08:00:00", Duration: 3 * 3600},
	}

	periods, err := ValidateShiftSegments(segments, now, shanghai)
	require.NoError(t, err)
	require.Len(t, periods, 3)

	for i, period := range periods {
		assert.Equal(t, segments[i].IsVisible, period.IsVisible)
		assert.Equal(t, segments[i].IsReoccurring, period.IsReoccurring)
		assert.Equal(t, time.Duration(segments[i].Duration)*time.Second, period.End.Sub(period.Start))
		assert.True(t, SameDay(period.Start, period.End, shanghai))
		for j := i + 1; j < len(periods); j++ {
			assert.False(t, OverlapsInclusive(period.Start, period.End, periods[j].Start, periods[j].End))
		}
	}

	assert.True(t, periods[0].Start.Equal(time.Date(2030, 1, 5, 5, 0, 0, 0, time.UTC)))
}

func TestValidateShiftSegmentsDayBoundaryFollowsTimezone(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	// UTC 14:00-17:00 在 UTC 中不跨天，但在上海是 22:00-次日 01:00
	segments := []domain.ShiftSegment{{Start: "2030-01-02T14:00:00Z", Duration: 3 * 3600}}

	_, err = ValidateShiftSegments(segments, now, time.UTC)
	assert.NoError(t, err)

	_, err = ValidateShiftSegments(segments, now, shanghai)
	assert.Error(t, err)
}
