package service

import (
	"context"
	"fmt"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/repository"
)

// 异常类型
const (
	AnomalyOffline    = "offline"
	AnomalyErrorBurst = "error_burst"
	AnomalyStuck      = "stuck"
)

// Anomaly 异常记录
type Anomaly struct {
	RobotID    string     `json:"robot_id"`
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	LastSeenAt *time.Time `json:"last_seen_at"`
	JobID      *string    `json:"job_id,omitempty"`
}

// AnomalyService 异常检测服务接口
// 每次调用都是对当前存储状态的独立扫描,不记忆之前报告过的异常
type AnomalyService interface {
	Detect(ctx context.Context) ([]Anomaly, error)
}

// anomalyService 异常检测服务实现
type anomalyService struct {
	repos      *repository.Repositories
	clock      Clock
	thresholds Thresholds
}

// NewAnomalyService 创建异常检测服务
func NewAnomalyService(repos *repository.Repositories, clock Clock, thresholds Thresholds) AnomalyService {
	if clock == nil {
		clock = SystemClock()
	}
	return &anomalyService{
		repos:      repos,
		clock:      clock,
		thresholds: thresholds,
	}
}

// Detect 依次检测离线、错误激增和卡住的任务
func (s *anomalyService) Detect(ctx context.Context) ([]Anomaly, error) {
	now := s.clock()
	anomalies := make([]Anomaly, 0)

	offline, err := s.repos.Robots.FindOffline(ctx, now.Add(-s.thresholds.OfflineAfter))
	if err != nil {
		return nil, fmt.Errorf("failed to find offline robots: %w", err)
	}
	offlineMessage := fmt.Sprintf("超过%s无心跳", humanDuration(s.thresholds.OfflineAfter))
	for _, robot := range offline {
		anomalies = append(anomalies, Anomaly{
			RobotID:    robot.RobotID,
			Type:       AnomalyOffline,
			Message:    offlineMessage,
			LastSeenAt: robot.LastSeenAt,
		})
	}

	counts, err := s.repos.Errors.CountByRobotSince(ctx, now.Add(-s.thresholds.ErrorBurstWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent errors: %w", err)
	}
	window := humanDuration(s.thresholds.ErrorBurstWindow)
	for _, c := range counts {
		if c.Count < int64(s.thresholds.ErrorBurstThreshold) {
			continue
		}
		anomalies = append(anomalies, Anomaly{
			RobotID: c.RobotID,
			Type:    AnomalyErrorBurst,
			Message: fmt.Sprintf("过去%s错误%d次", window, c.Count),
		})
	}

	stuck, err := s.repos.Jobs.FindStuck(ctx, now.Add(-s.thresholds.StuckAfter))
	if err != nil {
		return nil, fmt.Errorf("failed to find stuck jobs: %w", err)
	}
	stuckMessage := fmt.Sprintf("任务卡住超过%s", humanDuration(s.thresholds.StuckAfter))
	for _, job := range stuck {
		jobID := job.JobID
		anomalies = append(anomalies, Anomaly{
			RobotID: job.RobotID,
			Type:    AnomalyStuck,
			Message: stuckMessage,
			JobID:   &jobID,
		})
	}

	return anomalies, nil
}

// humanDuration 整小时显示为 "N小时",否则显示为 "N分钟"
func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d小时", int64(d/time.Hour))
	}
	return fmt.Sprintf("%d分钟", int64(d/time.Minute))
}
