package scheduler

import (
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/utils"
)

// GenerateSlots 以 duration 为步长，为每一个班次生成候选的开始时间
// 只保留 start + duration <= 班次结束时间 的候选，时长不足的班次返回空列表
func GenerateSlots(shifts []*domain.Shift, duration time.Duration) []ShiftSlots {
	result := make([]ShiftSlots, 0, len(shifts))

	for _, shift := range shifts {
		slots := ShiftSlots{
			ShiftID: shift.ID,
			Start:   shift.Start,
			Times:   make([]time.Time, 0),
		}

		if duration > 0 {
			for cursor := shift.Start; !cursor.Add(duration).After(shift.End); cursor = cursor.Add(duration) {
				slots.Times = append(slots.Times, cursor)
			}
		}

		result = append(result, slots)
	}

	return result
}

// FilterBooked 去掉和已有预约重叠的候选时间
func FilterBooked(slots []ShiftSlots, duration time.Duration, booked []Interval) []ShiftSlots {
	result := make([]ShiftSlots, 0, len(slots))

	for _, s := range slots {
		free := make([]time.Time, 0, len(s.Times))
		for _, t := range s.Times {
			if !overlapsAny(t, t.Add(duration), booked) {
				free = append(free, t)
			}
		}
		result = append(result, ShiftSlots{ShiftID: s.ShiftID, Start: s.Start, Times: free})
	}

	return result
}

// DropPast 去掉不晚于 now 的候选时间
func DropPast(slots []ShiftSlots, now time.Time) []ShiftSlots {
	result := make([]ShiftSlots, 0, len(slots))

	for _, s := range slots {
		future := make([]time.Time, 0, len(s.Times))
		for _, t := range s.Times {
			if t.After(now) {
				future = append(future, t)
			}
		}
		result = append(result, ShiftSlots{ShiftID: s.ShiftID, Start: s.Start, Times: future})
	}

	return result
}

// KeepWithin 只保留开始时间落在 [from, to) 内的候选时间
func KeepWithin(slots []ShiftSlots, from time.Time, to time.Time) []ShiftSlots {
	result := make([]ShiftSlots, 0, len(slots))

	for _, s := range slots {
		kept := make([]time.Time, 0, len(s.Times))
		for _, t := range s.Times {
			if !t.Before(from) && t.Before(to) {
				kept = append(kept, t)
			}
		}
		result = append(result, ShiftSlots{ShiftID: s.ShiftID, Start: s.Start, Times: kept})
	}

	return result
}

// GroupByDate 按照 loc 中的日期对候选时间分组，日期和组内时间都按升序排列，空的日期会被省略
func GroupByDate(slots []ShiftSlots, loc *time.Location) []domain.AvailabilitySlotGroup {
	groups := make(map[string][]time.Time)

	for _, s := range slots {
		for _, t := range s.Times {
			date := t.In(loc).Format(time.DateOnly)
			groups[date] = append(groups[date], t.In(loc))
		}
	}

	result := make([]domain.AvailabilitySlotGroup, 0, len(groups))
	for date, times := range groups {
		sort.Slice(times, func(i, j int) bool {
			return times[i].Before(times[j])
		})
		result = append(result, domain.AvailabilitySlotGroup{Date: date, Times: times})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result
}

func overlapsAny(start time.Time, end time.Time, booked []Interval) bool {
	for _, b := range booked {
		if utils.Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
