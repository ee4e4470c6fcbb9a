package service

import (
	"github.com/guyuan9300-max/fleethub/internal/document"
)

const (
	maxHealthScore = 100

	penaltyNotOK      = 40
	penaltyLowMemory  = 15
	penaltyHighLoad   = 10
	lowMemoryRatio    = 0.15
	highLoadAverage1m = 4.0
)

// ComputeHealthScore 根据心跳计算 0-100 的健康分
//   - ok 明确为 false 扣 40
//   - freemem/totalmem < 0.15 扣 15,任一值缺失或为 0 时跳过
//   - loadavg[0] > 4.0 扣 10,缺失、为空或非数值时跳过
func ComputeHealthScore(ok *bool, metrics *document.Document) int {
	score := maxHealthScore

	if ok != nil && !*ok {
		score -= penaltyNotOK
	}
	if ratio, known := memoryRatio(metrics); known && ratio < lowMemoryRatio {
		score -= penaltyLowMemory
	}
	if load, known := loadAverage1m(metrics); known && load > highLoadAverage1m {
		score -= penaltyHighLoad
	}

	if score < 0 {
		score = 0
	}
	return score
}

// memoryRatio 返回 freemem/totalmem
func memoryRatio(metrics *document.Document) (float64, bool) {
	freeVal, ok := metrics.Get("freemem")
	if !ok {
		return 0, false
	}
	totalVal, ok := metrics.Get("totalmem")
	if !ok {
		return 0, false
	}
	free, ok := freeVal.CoerceFloat()
	if !ok || free == 0 {
		return 0, false
	}
	total, ok := totalVal.CoerceFloat()
	if !ok || total == 0 {
		return 0, false
	}
	return free / total, true
}

// loadAverage1m 返回 loadavg 的第一个值
func loadAverage1m(metrics *document.Document) (float64, bool) {
	v, ok := metrics.Get("loadavg")
	if !ok {
		return 0, false
	}
	items, ok := v.AsArray()
	if !ok || len(items) == 0 {
		return 0, false
	}
	return items[0].CoerceFloat()
}
