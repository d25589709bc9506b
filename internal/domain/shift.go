package domain

import "time"

type Shift struct {
	ID            int64     `json:"id"`
	StaffID       int64     `json:"-"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	IsVisible     bool      `json:"isVisible"`
	IsReoccurring bool      `json:"isReoccurring"`
}

// Seconds 返回班次长度（秒）
func (s *Shift) Seconds() int64 {
	return int64(s.End.Sub(s.Start) / time.Second)
}

// ShiftSegment 是员工提交的原始班次片段
type ShiftSegment struct {
	IsVisible     bool   `json:"is_visible"`
	IsReoccurring bool   `json:"is_reoccurring"`
	Start         string `json:"start" validate:"required"`         // ISO 8601
	Duration      int64  `json:"duration" validate:"required,gt=0"` // 秒
}

// SchedulePeriod 是校验通过后的班次片段，start 和 end 都是绝对时间
type SchedulePeriod struct {
	IsVisible     bool
	IsReoccurring bool
	Start         time.Time
	End           time.Time
}

// ShiftSlot 是查询某个员工某个月份班次时返回的结果
type ShiftSlot struct {
	ID            int64     `json:"id"`
	IsVisible     bool      `json:"isVisible"`
	IsReoccurring bool      `json:"isReoccurring"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}
