package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/booking-manager/backend/internal/domain"
)

var (
	ErrInvalidISO8601  = errors.New("不是合法的 ISO 8601 时间")
	ErrNonexistentTime = errors.New("该时间在指定时区中不存在")
)

// 不带时区偏移的 ISO 8601 格式，按照目标时区的本地时间解析
var isoLocalLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISO8601 严格解析 ISO 8601 时间
// 带偏移量的时间直接得到绝对时间；不带偏移量的时间视为 loc 中的本地时间
func ParseISO8601(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}

	for _, layout := range isoLocalLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err != nil {
			continue
		}

		// 夏令时跳变的那段本地时间并不存在，time 包会自动把它顺延，这里需要拒绝
		wall, _ := time.Parse(layout, value)
		if !sameWallClock(wall, t) {
			return time.Time{}, ErrNonexistentTime
		}

		return t, nil
	}

	return time.Time{}, ErrInvalidISO8601
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ah, amin, as := a.Clock()
	bh, bmin, bs := b.Clock()
	return ay == by && am == bm && ad == bd && ah == bh && amin == bmin && as == bs
}

// Overlaps 判断两个半开区间 [aStart, aEnd) 和 [bStart, bEnd) 是否重叠
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapsInclusive 和 Overlaps 类似，但端点相接也算重叠
func OverlapsInclusive(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// SameDay 判断两个时间在 loc 中是否是同一天
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// ResolveTimezone 解析时区名称，为空或者无法识别时使用 fallback，fallback 也无法识别时使用 UTC
func ResolveTimezone(name string, fallback string) *time.Location {
	if name = strings.TrimSpace(name); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}

	if loc, err := time.LoadLocation(fallback); err == nil {
		return loc
	}

	return time.UTC
}

// ValidateMonthYear 检查查询参数中的月份和年份
func ValidateMonthYear(month int, year int) error {
	if month < 1 || month > 12 {
		return domain.InvalidInput("月份必须在 1 到 12 之间")
	}
	if year < 1970 || year > 9999 {
		return domain.InvalidInput("年份 %d 无效", year)
	}
	return nil
}

// MonthRange 返回 loc 中某个月份的 [第一天 00:00, 下个月第一天 00:00)
func MonthRange(month int, year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
