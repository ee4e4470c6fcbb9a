package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guyuan9300-max/fleethub/internal/model"
	"github.com/guyuan9300-max/fleethub/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	robotDetailLimit = 20
	robotListLimit   = 50
	jobListLimit     = 200
	analysisLimit    = 20
)

// QueryService 查询服务接口
type QueryService interface {
	ListRobots(ctx context.Context) ([]*model.RobotModel, error)
	GetRobot(ctx context.Context, robotID string) (*RobotDetail, error)
	ListRobotJobs(ctx context.Context, robotID string) ([]*model.JobModel, error)
	ListRobotErrors(ctx context.Context, robotID string) ([]*model.ErrorEventModel, error)
	ListJobs(ctx context.Context, status *string) ([]*model.JobModel, error)
	DiagnosticsPackage(ctx context.Context, robotID string, fingerprint *string) (*DiagnosticsPackage, error)
}

// RobotDetail 机器人详情
type RobotDetail struct {
	Robot        *model.RobotModel        `json:"robot"`
	LatestReport datatypes.JSON           `json:"latest_report"`
	Jobs         []*model.JobModel        `json:"jobs"`
	Errors       []*model.ErrorEventModel `json:"errors"`
}

// DiagnosticsPackage 诊断包:最近一次错误、关联任务、最近心跳和已有分析
type DiagnosticsPackage struct {
	RobotID      string                      `json:"robot_id"`
	Error        *model.ErrorEventModel      `json:"error"`
	Job          *model.JobModel             `json:"job"`
	LatestHealth datatypes.JSON              `json:"latest_health"`
	Analyses     []*model.ErrorAnalysisModel `json:"analyses"`
}

// queryService 查询服务实现
type queryService struct {
	repos *repository.Repositories
}

// NewQueryService 创建查询服务
func NewQueryService(repos *repository.Repositories) QueryService {
	return &queryService{repos: repos}
}

// ListRobots 列出所有机器人
func (s *queryService) ListRobots(ctx context.Context) ([]*model.RobotModel, error) {
	robots, err := s.repos.Robots.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list robots: %w", err)
	}
	return robots, nil
}

// GetRobot 获取机器人详情,机器人不存在时返回 ErrNotFound
func (s *queryService) GetRobot(ctx context.Context, robotID string) (*RobotDetail, error) {
	robot, err := s.repos.Robots.FindByID(ctx, robotID)
	if err != nil {
		return nil, notFoundOr(err, "robot %s", robotID)
	}

	latest, err := s.latestHealth(ctx, robotID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.repos.Jobs.FindByFilter(ctx, &repository.JobFilter{RobotID: &robotID, Limit: robotDetailLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list robot jobs: %w", err)
	}
	errs, err := s.repos.Errors.FindByRobot(ctx, robotID, robotDetailLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list robot errors: %w", err)
	}

	return &RobotDetail{
		Robot:        robot,
		LatestReport: latest,
		Jobs:         jobs,
		Errors:       errs,
	}, nil
}

// ListRobotJobs 机器人最近的任务
func (s *queryService) ListRobotJobs(ctx context.Context, robotID string) ([]*model.JobModel, error) {
	jobs, err := s.repos.Jobs.FindByFilter(ctx, &repository.JobFilter{RobotID: &robotID, Limit: robotListLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list robot jobs: %w", err)
	}
	return jobs, nil
}

// ListRobotErrors 机器人最近的错误
func (s *queryService) ListRobotErrors(ctx context.Context, robotID string) ([]*model.ErrorEventModel, error) {
	errs, err := s.repos.Errors.FindByRobot(ctx, robotID, robotListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list robot errors: %w", err)
	}
	return errs, nil
}

// ListJobs 列出最近的任务,status 非空时按状态过滤
func (s *queryService) ListJobs(ctx context.Context, status *string) ([]*model.JobModel, error) {
	jobs, err := s.repos.Jobs.FindByFilter(ctx, &repository.JobFilter{Status: status, Limit: jobListLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// DiagnosticsPackage 组装诊断包,缺失的部分为 null
func (s *queryService) DiagnosticsPackage(ctx context.Context, robotID string, fingerprint *string) (*DiagnosticsPackage, error) {
	pkg := &DiagnosticsPackage{
		RobotID:  robotID,
		Analyses: []*model.ErrorAnalysisModel{},
	}

	latestError, err := s.repos.Errors.FindLatest(ctx, robotID, fingerprint)
	switch {
	case err == nil:
		pkg.Error = latestError
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("failed to find latest error: %w", err)
	}

	if pkg.Error != nil && pkg.Error.JobID != nil {
		job, err := s.repos.Jobs.FindByID(ctx, *pkg.Error.JobID)
		switch {
		case err == nil:
			pkg.Job = job
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, fmt.Errorf("failed to find job: %w", err)
		}
	}

	if pkg.LatestHealth, err = s.latestHealth(ctx, robotID); err != nil {
		return nil, err
	}

	fp := fingerprint
	if fp == nil && pkg.Error != nil {
		fp = pkg.Error.Fingerprint
	}
	if fp != nil {
		analyses, err := s.repos.Analyses.FindByFingerprint(ctx, *fp, analysisLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list analyses: %w", err)
		}
		pkg.Analyses = analyses
	}

	return pkg, nil
}

// latestHealth 最近一次心跳原始内容,没有心跳时返回 nil
func (s *queryService) latestHealth(ctx context.Context, robotID string) (datatypes.JSON, error) {
	report, err := s.repos.HealthReports.FindLatestByRobot(ctx, robotID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest health report: %w", err)
	}
	return report.Payload, nil
}
