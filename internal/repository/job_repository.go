package repository

import (
	"context"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository 任务仓储接口
type JobRepository interface {
	Upsert(ctx context.Context, job *model.JobModel) error
	FindByID(ctx context.Context, jobID string) (*model.JobModel, error)
	FindByFilter(ctx context.Context, filter *JobFilter) ([]*model.JobModel, error)
	CountRobotsWithStatus(ctx context.Context, status string) (int64, error)
	FindStuck(ctx context.Context, cutoff time.Time) ([]*model.JobModel, error)
	CountStuck(ctx context.Context, cutoff time.Time) (int64, error)
	EndedTotals(ctx context.Context, from, to time.Time, status *string) (*JobTotals, error)
	DoneTotalsByRobot(ctx context.Context, from, to time.Time) (map[string]JobTotals, error)
	FindActiveSince(ctx context.Context, since time.Time) ([]*model.JobModel, error)
}

// JobFilter 任务查询过滤器
type JobFilter struct {
	RobotID *string
	Status  *string
	Limit   int
}

// JobTotals 任务数量和工作量合计
type JobTotals struct {
	RobotID   string `gorm:"column:robot_id"`
	Count     int64  `gorm:"column:job_count"`
	WorkUnits int64  `gorm:"column:work_units"`
}

// jobUpsertColumns 冲突时整行覆盖的列,job_id 除外
var jobUpsertColumns = []string{
	"robot_id", "job_type", "title", "status", "priority",
	"created_at", "started_at", "ended_at", "progress", "stage",
	"work_units_total", "work_units_done", "metrics", "last_error", "updated_at",
}

// jobRepository 任务仓储实现
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository 创建任务仓储
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Upsert 按 job_id 整行覆盖写入,本次未携带的字段会被置空
func (r *jobRepository) Upsert(ctx context.Context, job *model.JobModel) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns(jobUpsertColumns),
	}).Create(job).Error
}

// FindByID 根据 ID 查找任务
func (r *jobRepository) FindByID(ctx context.Context, jobID string) (*model.JobModel, error) {
	var job model.JobModel
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindByFilter 根据过滤器查找任务,按创建时间倒序,created_at 为空的排在最后
func (r *jobRepository) FindByFilter(ctx context.Context, filter *JobFilter) ([]*model.JobModel, error) {
	var jobs []*model.JobModel
	query := r.db.WithContext(ctx).Model(&model.JobModel{})

	if filter != nil {
		if filter.RobotID != nil {
			query = query.Where("robot_id = ?", *filter.RobotID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
	}

	err := query.
		Order("created_at IS NULL, created_at DESC").
		Order("updated_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// CountRobotsWithStatus 统计至少有一个指定状态任务的机器人数
func (r *jobRepository) CountRobotsWithStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.JobModel{}).
		Where("status = ?", status).
		Distinct("robot_id").
		Count(&count).Error
	return count, err
}

// FindStuck 查找 RUNNING 且 updated_at 早于 cutoff 的任务
func (r *jobRepository) FindStuck(ctx context.Context, cutoff time.Time) ([]*model.JobModel, error) {
	var jobs []*model.JobModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.JobStatusRunning, cutoff).
		Order("updated_at ASC").
		Order("job_id ASC").
		Find(&jobs).Error
	return jobs, err
}

// CountStuck 统计卡住的任务数
func (r *jobRepository) CountStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.JobModel{}).
		Where("status = ? AND updated_at < ?", model.JobStatusRunning, cutoff).
		Count(&count).Error
	return count, err
}

// EndedTotals 统计 ended_at 落在 [from, to) 的任务数和 work_units_done 合计
// status 为空时不限状态
func (r *jobRepository) EndedTotals(ctx context.Context, from, to time.Time, status *string) (*JobTotals, error) {
	var totals JobTotals
	query := r.db.WithContext(ctx).Model(&model.JobModel{}).
		Select("COUNT(*) AS job_count, COALESCE(SUM(work_units_done), 0) AS work_units").
		Where("ended_at >= ? AND ended_at < ?", from, to)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}

// DoneTotalsByRobot 按机器人统计 ended_at 落在 [from, to) 的 DONE 任务
func (r *jobRepository) DoneTotalsByRobot(ctx context.Context, from, to time.Time) (map[string]JobTotals, error) {
	var rows []JobTotals
	err := r.db.WithContext(ctx).Model(&model.JobModel{}).
		Select("robot_id, COUNT(*) AS job_count, COALESCE(SUM(work_units_done), 0) AS work_units").
		Where("status = ? AND ended_at >= ? AND ended_at < ?", model.JobStatusDone, from, to).
		Group("robot_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]JobTotals, len(rows))
	for _, row := range rows {
		result[row.RobotID] = row
	}
	return result, nil
}

// FindActiveSince 查找与 since 之后时间段有交集的任务:
// 之后开始、之后结束或仍在 RUNNING
func (r *jobRepository) FindActiveSince(ctx context.Context, since time.Time) ([]*model.JobModel, error) {
	var jobs []*model.JobModel
	err := r.db.WithContext(ctx).
		Where("started_at >= ? OR ended_at >= ? OR status = ?", since, since, model.JobStatusRunning).
		Order("robot_id ASC").
		Order("job_id ASC").
		Find(&jobs).Error
	return jobs, err
}
