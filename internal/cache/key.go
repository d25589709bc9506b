package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Key 根据规范化后的服务名称集合、员工 ID、月份、年份和时区生成缓存的键
// 服务名称的顺序、大小写、首尾空白和重复都不会影响结果
func Key(services []string, staffID string, month int, year int, timezone string) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s", normalizeServices(services), staffID, month, year, timezone)
}

// RangeKey 和 Key 类似，但用于显式指定起止时间的查询
func RangeKey(services []string, staffID string, start time.Time, end time.Time, timezone string) string {
	return fmt.Sprintf("%s|%s|%d-%d|%s", normalizeServices(services), staffID, start.UnixMilli(), end.UnixMilli(), timezone)
}

func normalizeServices(services []string) string {
	seen := make(map[string]struct{}, len(services))
	names := make([]string, 0, len(services))

	for _, s := range services {
		name := strings.ToLower(strings.TrimSpace(s))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	sort.Strings(names)
	return strings.Join(names, ",")
}
