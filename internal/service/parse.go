package service

import (
	"strings"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/document"
)

// 带时区的格式,按顺序尝试
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
}

// 不带时区的格式,按 UTC 解释
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp 宽松解析 ISO-8601 时间,结果转换为 UTC
// 无法解析时返回 false,由调用方决定替代值
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTimestampValue 非字符串的值视为无法解析
func parseTimestampValue(v document.Value) (time.Time, bool) {
	s, ok := v.AsString()
	if !ok {
		return time.Time{}, false
	}
	return ParseTimestamp(s)
}

// timestampOrNil 无法解析时返回 nil
func timestampOrNil(v document.Value) *time.Time {
	t, ok := parseTimestampValue(v)
	if !ok {
		return nil
	}
	return &t
}

// timestampOr 无法解析时返回 fallback
func timestampOr(v document.Value, fallback time.Time) time.Time {
	if t, ok := parseTimestampValue(v); ok {
		return t
	}
	return fallback
}

// ParseReportDate 解析日报日期 (YYYY-MM-DD,也接受完整时间),为空或无法解析时返回 now 所在日期
func ParseReportDate(s string, now time.Time) time.Time {
	if t, ok := ParseTimestamp(s); ok {
		return dayStart(t)
	}
	return dayStart(now)
}
