package repository

import (
	"context"

	"github.com/guyuan9300-max/fleethub/internal/model"
	"gorm.io/gorm"
)

// HealthReportRepository 心跳记录仓储接口
type HealthReportRepository interface {
	Create(ctx context.Context, report *model.HealthReportModel) error
	FindLatestByRobot(ctx context.Context, robotID string) (*model.HealthReportModel, error)
}

// healthReportRepository 心跳记录仓储实现
type healthReportRepository struct {
	db *gorm.DB
}

// NewHealthReportRepository 创建心跳记录仓储
func NewHealthReportRepository(db *gorm.DB) HealthReportRepository {
	return &healthReportRepository{db: db}
}

// Create 追加心跳记录
func (r *healthReportRepository) Create(ctx context.Context, report *model.HealthReportModel) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// FindLatestByRobot 查找机器人最近一次心跳
func (r *healthReportRepository) FindLatestByRobot(ctx context.Context, robotID string) (*model.HealthReportModel, error) {
	var report model.HealthReportModel
	err := r.db.WithContext(ctx).
		Where("robot_id = ?", robotID).
		Order("report_at DESC").
		Order("id DESC").
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}
