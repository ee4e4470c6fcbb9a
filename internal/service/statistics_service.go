package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/model"
	"github.com/guyuan9300-max/fleethub/internal/repository"
)

const (
	reportDateLayout = "2006-01-02"
	topErrorCodes    = 3
)

// StatisticsService 机群统计服务接口
// "今天" 是当前时刻所在的 UTC 自然日,每次调用按各自的当前时间重新计算
type StatisticsService interface {
	FleetOverview(ctx context.Context) (*FleetOverview, error)
	DailyReport(ctx context.Context, date time.Time) (*DailyReport, error)
	Today() time.Time
}

// FleetOverview 机群概览
type FleetOverview struct {
	TotalCount          int64   `json:"total_count"`
	OnlineCount         int64   `json:"online_count"`
	ErrorCount          int64   `json:"error_count"`
	RunningCount        int64   `json:"running_count"`
	IdleCount           int64   `json:"idle_count"`
	TodayWorkUnitsTotal int64   `json:"today_work_units_total"`
	AvgUtilizationToday float64 `json:"avg_utilization_today"`
	TodayJobsDone       int64   `json:"today_jobs_done"`
	StuckJobsCount      int64   `json:"stuck_jobs_count"`
}

// DailyReport 日报
type DailyReport struct {
	Date    string              `json:"date"`
	Reports []*RobotDailyReport `json:"reports"`
}

// RobotDailyReport 单个机器人的日报
type RobotDailyReport struct {
	RobotID   string           `json:"robot_id"`
	Date      string           `json:"date"`
	JobsDone  int64            `json:"jobs_done"`
	WorkUnits int64            `json:"work_units"`
	TopErrors []ErrorCodeCount `json:"top_errors"`
	Summary   string           `json:"summary"`
}

// ErrorCodeCount 错误码出现次数
type ErrorCodeCount struct {
	Code  *string `json:"code"`
	Count int64   `json:"count"`
}

// statisticsService 机群统计服务实现
type statisticsService struct {
	repos      *repository.Repositories
	clock      Clock
	thresholds Thresholds
}

// NewStatisticsService 创建机群统计服务
func NewStatisticsService(repos *repository.Repositories, clock Clock, thresholds Thresholds) StatisticsService {
	if clock == nil {
		clock = SystemClock()
	}
	return &statisticsService{
		repos:      repos,
		clock:      clock,
		thresholds: thresholds,
	}
}

// Today 当前 UTC 日期零点
func (s *statisticsService) Today() time.Time {
	return dayStart(s.clock())
}

// FleetOverview 计算机群概览
func (s *statisticsService) FleetOverview(ctx context.Context) (*FleetOverview, error) {
	now := s.clock()
	start := dayStart(now)
	end := start.Add(24 * time.Hour)

	var (
		overview FleetOverview
		err      error
	)

	if overview.TotalCount, err = s.repos.Robots.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count robots: %w", err)
	}
	if overview.OnlineCount, err = s.repos.Robots.CountByOK(ctx, true); err != nil {
		return nil, fmt.Errorf("failed to count online robots: %w", err)
	}
	if overview.ErrorCount, err = s.repos.Robots.CountByOK(ctx, false); err != nil {
		return nil, fmt.Errorf("failed to count error robots: %w", err)
	}
	if overview.RunningCount, err = s.repos.Jobs.CountRobotsWithStatus(ctx, model.JobStatusRunning); err != nil {
		return nil, fmt.Errorf("failed to count running robots: %w", err)
	}
	overview.IdleCount = overview.OnlineCount - overview.RunningCount
	if overview.IdleCount < 0 {
		overview.IdleCount = 0
	}

	totals, err := s.repos.Jobs.EndedTotals(ctx, start, end, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum jobs ended today: %w", err)
	}
	overview.TodayJobsDone = totals.Count
	overview.TodayWorkUnitsTotal = totals.WorkUnits

	if overview.StuckJobsCount, err = s.repos.Jobs.CountStuck(ctx, now.Add(-s.thresholds.StuckAfter)); err != nil {
		return nil, fmt.Errorf("failed to count stuck jobs: %w", err)
	}

	active, err := s.repos.Jobs.FindActiveSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load active jobs: %w", err)
	}
	overview.AvgUtilizationToday = AverageUtilization(active, start, now)

	return &overview, nil
}

// AverageUtilization 计算 [dayStart, now) 窗口内的平均利用率
// 每个机器人的利用率为活跃秒数 / 已过秒数,上限 1.0;结果保留两位小数
// 没有 started_at 的任务不计入,未结束的任务以 now 作为结束时间
func AverageUtilization(jobs []*model.JobModel, dayStart, now time.Time) float64 {
	active := make(map[string]float64)
	for _, job := range jobs {
		if job.StartedAt == nil {
			continue
		}
		start := *job.StartedAt
		if start.Before(dayStart) {
			start = dayStart
		}
		end := now
		if job.EndedAt != nil && job.EndedAt.Before(now) {
			end = *job.EndedAt
		}
		if end.Before(dayStart) {
			continue
		}
		seconds := end.Sub(start).Seconds()
		if seconds < 0 {
			continue
		}
		active[job.RobotID] += seconds
	}

	if len(active) == 0 {
		return 0
	}

	window := now.Sub(dayStart).Seconds()
	if window < 1 {
		window = 1
	}

	var sum float64
	for _, seconds := range active {
		sum += math.Min(seconds/window, 1.0)
	}
	return math.Round(sum/float64(len(active))*100) / 100
}

// DailyReport 生成指定日期的日报,所有已知机器人都会出现在结果中
func (s *statisticsService) DailyReport(ctx context.Context, date time.Time) (*DailyReport, error) {
	start := dayStart(date)
	end := start.Add(24 * time.Hour)
	dateText := start.Format(reportDateLayout)

	robots, err := s.repos.Robots.FindAllOrderByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list robots: %w", err)
	}
	done, err := s.repos.Jobs.DoneTotalsByRobot(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum done jobs: %w", err)
	}
	codes, err := s.repos.Errors.CountCodesBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count error codes: %w", err)
	}
	topErrors := rankErrorCodes(codes, topErrorCodes)

	report := &DailyReport{
		Date:    dateText,
		Reports: make([]*RobotDailyReport, 0, len(robots)),
	}
	for _, robot := range robots {
		totals := done[robot.RobotID]
		top := topErrors[robot.RobotID]
		if top == nil {
			top = []ErrorCodeCount{}
		}
		report.Reports = append(report.Reports, &RobotDailyReport{
			RobotID:   robot.RobotID,
			Date:      dateText,
			JobsDone:  totals.Count,
			WorkUnits: totals.WorkUnits,
			TopErrors: top,
			Summary:   fmt.Sprintf("当日完成%d个任务，产出%d工作量。", totals.Count, totals.WorkUnits),
		})
	}
	return report, nil
}

// rankErrorCodes 每个机器人取出现次数最多的 limit 个错误码,次数相同按错误码升序
func rankErrorCodes(rows []repository.CodeCount, limit int) map[string][]ErrorCodeCount {
	byRobot := make(map[string][]ErrorCodeCount)
	for _, row := range rows {
		byRobot[row.RobotID] = append(byRobot[row.RobotID], ErrorCodeCount{Code: row.Code, Count: row.Count})
	}
	for robotID, counts := range byRobot {
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].Count != counts[j].Count {
				return counts[i].Count > counts[j].Count
			}
			return codeKey(counts[i].Code) < codeKey(counts[j].Code)
		})
		if len(counts) > limit {
			counts = counts[:limit]
		}
		byRobot[robotID] = counts
	}
	return byRobot
}

// codeKey 空错误码排在最前
func codeKey(code *string) string {
	if code == nil {
		return ""
	}
	return *code
}
