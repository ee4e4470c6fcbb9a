package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/guyuan9300-max/fleethub/internal/document"
	"github.com/guyuan9300-max/fleethub/internal/event"
	"github.com/guyuan9300-max/fleethub/internal/model"
	"github.com/guyuan9300-max/fleethub/internal/repository"
	"github.com/guyuan9300-max/fleethub/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// IngestService 上报归一化服务接口
// 把原始上报转换为规范记录,写入存储后发布领域事件
type IngestService interface {
	IngestHealth(ctx context.Context, in *HealthReportInput) (*model.RobotModel, error)
	IngestJob(ctx context.Context, in *JobInput) (*model.JobModel, error)
	IngestError(ctx context.Context, in *ErrorInput) (*model.ErrorEventModel, error)
	RecordAnalysis(ctx context.Context, in *AnalysisInput) (*model.ErrorAnalysisModel, error)
}

// HealthReportInput 心跳上报
type HealthReportInput struct {
	RobotID  string            `json:"robot_id"`
	Hostname *string           `json:"hostname"`
	Platform *string           `json:"platform"`
	ReportAt document.Value    `json:"report_at"` // 无法解析时使用当前时间
	Health   document.Document `json:"health"`    // ok: bool, version: string
	Status   document.Document `json:"status"`
	Metrics  document.Document `json:"metrics"` // totalmem, freemem, loadavg
}

// Validate 校验必填字段
func (in *HealthReportInput) Validate() error {
	if err := utils.ValidateID(in.RobotID); err != nil {
		return invalidf("robot_id: %v", err)
	}
	return nil
}

// JobInput 任务上报,每次上报都是完整记录
type JobInput struct {
	JobID          string                `json:"job_id"`
	RobotID        string                `json:"robot_id"`
	JobType        *string               `json:"job_type"`
	Title          *string               `json:"title"`
	Status         *string               `json:"status"`
	Priority       *int                  `json:"priority"`
	CreatedAt      document.Value        `json:"created_at"`
	StartedAt      document.Value        `json:"started_at"`
	EndedAt        document.Value        `json:"ended_at"`
	Progress       *float64              `json:"progress"`
	Stage          *string               `json:"stage"`
	WorkUnitsTotal *int64                `json:"work_units_total"`
	WorkUnitsDone  *int64                `json:"work_units_done"`
	Metrics        document.Document     `json:"metrics"`
	LastError      document.NullDocument `json:"last_error"`
}

// Validate 校验必填字段
func (in *JobInput) Validate() error {
	if err := utils.ValidateID(in.JobID); err != nil {
		return invalidf("job_id: %v", err)
	}
	if err := utils.ValidateID(in.RobotID); err != nil {
		return invalidf("robot_id: %v", err)
	}
	return nil
}

// ErrorInput 错误上报
type ErrorInput struct {
	RobotID     string            `json:"robot_id"`
	JobID       *string           `json:"job_id"`
	TS          document.Value    `json:"ts"` // 无法解析时使用当前时间
	Code        *string           `json:"code"`
	Message     *string           `json:"message"`
	Fingerprint *string           `json:"fingerprint"`
	Context     document.Document `json:"context"`
}

// Validate 校验必填字段
func (in *ErrorInput) Validate() error {
	if err := utils.ValidateID(in.RobotID); err != nil {
		return invalidf("robot_id: %v", err)
	}
	if err := utils.ValidateOptionalID(in.JobID); err != nil {
		return invalidf("job_id: %v", err)
	}
	return nil
}

// AnalysisInput 错误分析,所有标识字段都是可选的
type AnalysisInput struct {
	ErrorID     *uint64           `json:"error_id"`
	RobotID     *string           `json:"robot_id"`
	Fingerprint *string           `json:"fingerprint"`
	Analysis    document.Document `json:"analysis"`
}

// Validate 校验字段格式
func (in *AnalysisInput) Validate() error {
	if err := utils.ValidateOptionalID(in.RobotID); err != nil {
		return invalidf("robot_id: %v", err)
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(event.DomainEvent) {}

// ingestService 上报归一化服务实现
type ingestService struct {
	repos     *repository.Repositories
	publisher event.Publisher
	clock     Clock
	logger    *logrus.Logger
}

// NewIngestService 创建上报归一化服务
func NewIngestService(repos *repository.Repositories, publisher event.Publisher, clock Clock, logger *logrus.Logger) IngestService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ingestService{
		repos:     repos,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// IngestHealth 处理心跳:计算健康分,更新机器人,追加心跳记录,发布 robot.heartbeat
func (s *ingestService) IngestHealth(ctx context.Context, in *HealthReportInput) (*model.RobotModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	reportAt := timestampOr(in.ReportAt, s.clock())

	// 只有明确的布尔值才算已知
	var ok *bool
	if v, found := in.Health.Get("ok"); found {
		if b, isBool := v.AsBool(); isBool {
			ok = &b
		}
	}
	var version *string
	if v, found := in.Health.Get("version"); found {
		if str, isString := v.AsString(); isString {
			version = &str
		}
	}
	score := ComputeHealthScore(ok, &in.Metrics)

	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode health payload: %w", err)
	}

	robot := &model.RobotModel{
		RobotID:     in.RobotID,
		Hostname:    in.Hostname,
		Platform:    in.Platform,
		FirstSeenAt: &reportAt,
		LastSeenAt:  &reportAt,
		Version:     version,
		OK:          ok,
		HealthScore: &score,
	}
	report := &model.HealthReportModel{
		RobotID:  in.RobotID,
		ReportAt: reportAt,
		OK:       ok,
		Payload:  datatypes.JSON(raw),
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Robots.Upsert(ctx, robot); err != nil {
			return fmt.Errorf("failed to upsert robot: %w", err)
		}
		if err := tx.HealthReports.Create(ctx, report); err != nil {
			return fmt.Errorf("failed to append health report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"robot_id":     in.RobotID,
		"health_score": score,
	}).Debug("health report ingested")

	s.publisher.Publish(event.NewRobotHeartbeat(reportAt, in.RobotID, ok, score))
	return robot, nil
}

// IngestJob 处理任务上报:按 job_id 整行覆盖,发布 job.updated
func (s *ingestService) IngestJob(ctx context.Context, in *JobInput) (*model.JobModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.clock()
	job := &model.JobModel{
		JobID:          in.JobID,
		RobotID:        in.RobotID,
		JobType:        in.JobType,
		Title:          in.Title,
		Status:         in.Status,
		Priority:       in.Priority,
		CreatedAt:      timestampOrNil(in.CreatedAt),
		StartedAt:      timestampOrNil(in.StartedAt),
		EndedAt:        timestampOrNil(in.EndedAt),
		Progress:       in.Progress,
		Stage:          in.Stage,
		WorkUnitsTotal: in.WorkUnitsTotal,
		WorkUnitsDone:  in.WorkUnitsDone,
		Metrics:        in.Metrics,
		LastError:      in.LastError,
		UpdatedAt:      now,
	}

	if err := s.repos.Jobs.Upsert(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to upsert job: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"robot_id": in.RobotID,
		"job_id":   in.JobID,
	}).Debug("job update ingested")

	s.publisher.Publish(event.NewJobUpdated(now, in.RobotID, in.JobID, in.Status, in.Progress))
	return job, nil
}

// IngestError 处理错误上报:每次都追加新记录,发布 error.raised
func (s *ingestService) IngestError(ctx context.Context, in *ErrorInput) (*model.ErrorEventModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ts := timestampOr(in.TS, s.clock())
	ev := &model.ErrorEventModel{
		RobotID:     in.RobotID,
		JobID:       in.JobID,
		TS:          ts,
		Code:        in.Code,
		Message:     in.Message,
		Fingerprint: in.Fingerprint,
		Context:     in.Context,
	}

	if err := s.repos.Errors.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to append error event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"robot_id": in.RobotID,
		"error_id": ev.ID,
	}).Debug("error event ingested")

	s.publisher.Publish(event.NewErrorRaised(ts, in.RobotID, in.JobID, in.Code, in.Message))
	return ev, nil
}

// RecordAnalysis 追加错误分析,不校验 error_id 是否存在,发布 analysis.created
func (s *ingestService) RecordAnalysis(ctx context.Context, in *AnalysisInput) (*model.ErrorAnalysisModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.clock()
	analysis := &model.ErrorAnalysisModel{
		ErrorID:     in.ErrorID,
		RobotID:     in.RobotID,
		Fingerprint: in.Fingerprint,
		Analysis:    in.Analysis,
		CreatedAt:   now,
	}

	if err := s.repos.Analyses.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to append error analysis: %w", err)
	}

	s.publisher.Publish(event.NewAnalysisCreated(now, in.RobotID, in.Fingerprint))
	return analysis, nil
}
