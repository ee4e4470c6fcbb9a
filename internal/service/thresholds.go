package service

import (
	"time"

	"github.com/guyuan9300-max/fleethub/internal/config"
)

// Thresholds 机群判定阈值
type Thresholds struct {
	OfflineAfter        time.Duration // 超过该时间无心跳视为离线
	StuckAfter          time.Duration // RUNNING 任务超过该时间无更新视为卡住
	ErrorBurstWindow    time.Duration
	ErrorBurstThreshold int // 窗口内错误数达到该值视为错误激增
}

// DefaultThresholds 默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{
		OfflineAfter:        10 * time.Minute,
		StuckAfter:          15 * time.Minute,
		ErrorBurstWindow:    60 * time.Minute,
		ErrorBurstThreshold: 3,
	}
}

// ThresholdsFromConfig 从配置读取阈值,未设置的使用默认值
func ThresholdsFromConfig(cfg config.FleetConfig) Thresholds {
	t := DefaultThresholds()
	if cfg.OfflineAfter > 0 {
		t.OfflineAfter = cfg.OfflineAfter
	}
	if cfg.StuckAfter > 0 {
		t.StuckAfter = cfg.StuckAfter
	}
	if cfg.ErrorBurstWindow > 0 {
		t.ErrorBurstWindow = cfg.ErrorBurstWindow
	}
	if cfg.ErrorBurstThreshold > 0 {
		t.ErrorBurstThreshold = cfg.ErrorBurstThreshold
	}
	return t
}
