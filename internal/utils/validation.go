package utils

import (
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

const secondsPerDay = 24 * 60 * 60

// ValidateShiftSegments 校验员工一次提交的所有班次片段，并转换为绝对时间
// 返回结果的顺序和输入一致
func ValidateShiftSegments(segments []domain.ShiftSegment, now time.Time, loc *time.Location) ([]domain.SchedulePeriod, error) {
	if len(segments) == 0 {
		return nil, domain.InvalidInput("至少需要提交一个班次")
	}

	periods := make([]domain.SchedulePeriod, 0, len(segments))

	for i, segment := range segments {
		start, err := ParseISO8601(segment.Start, loc)
		if err != nil {
			switch {
			case errors.Is(err, ErrNonexistentTime):
				return nil, domain.InvalidInput("第 %d 个班次的开始时间 %s 是无效日期", i+1, segment.Start)
			default:
				return nil, domain.InvalidInput("第 %d 个班次的开始时间 %s 必须是 ISO 8601 格式", i+1, segment.Start)
			}
		}

		if !start.After(now) {
			return nil, domain.InvalidInput("第 %d 个班次的开始时间 %s 不能早于当前时间", i+1, segment.Start)
		}

		if segment.Duration <= 0 {
			return nil, domain.InvalidInput("第 %d 个班次的时长必须大于 0", i+1)
		}

		// 超过一天的时长必然跨天，提前拦截也避免了 time.Duration 溢出
		if segment.Duration > secondsPerDay {
			return nil, domain.InvalidInput("第 %d 个班次不能跨天", i+1)
		}

		end := start.Add(time.Duration(segment.Duration) * time.Second)
		if !SameDay(start, end, loc) {
			return nil, domain.InvalidInput("第 %d 个班次不能跨天", i+1)
		}

		for j, period := range periods {
			if OverlapsInclusive(start, end, period.Start, period.End) {
				return nil, domain.InvalidInput("第 %d 个班次和第 %d 个班次的时间重叠", i+1, j+1)
			}
		}

		periods = append(periods, domain.SchedulePeriod{
			IsVisible:     segment.IsVisible,
			IsReoccurring: segment.IsReoccurring,
			Start:         start,
			End:           end,
		})
	}

	return periods, nil
}
