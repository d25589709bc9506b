package domain

import "time"

type AvailabilityQuery struct {
	StaffID  string
	Services []string
	Month    int
	Year     int
	// 如果 Start 和 End 都不为空，则使用这个区间而不是 Month 和 Year
	Start    *time.Time
	End      *time.Time
	Timezone string
}

type AvailabilitySlotGroup struct {
	Date  string      `json:"date"` // 2006-01-02，以请求的时区为准
	Times []time.Time `json:"times"`
}
