package service

import "time"

// Clock 返回当前时间,所有 "now" 都是 UTC
type Clock func() time.Time

// SystemClock 系统时钟
func SystemClock() Clock {
	return func() time.Time {
		return time.Now().UTC()
	}
}

// FixedClock 固定时钟
func FixedClock(t time.Time) Clock {
	t = t.UTC()
	return func() time.Time {
		return t
	}
}

// dayStart 返回 t 所在 UTC 自然日的零点
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
