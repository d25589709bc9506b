package scheduler

import "time"

// Interval 是一个半开区间 [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// ShiftSlots 是某个班次生成的所有候选开始时间
type ShiftSlots struct {
	ShiftID int64
	Start   time.Time
	Times   []time.Time
}
