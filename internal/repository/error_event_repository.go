package repository

import (
	"context"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/model"
	"gorm.io/gorm"
)

// ErrorEventRepository 错误事件仓储接口
type ErrorEventRepository interface {
	Create(ctx context.Context, ev *model.ErrorEventModel) error
	FindByRobot(ctx context.Context, robotID string, limit int) ([]*model.ErrorEventModel, error)
	FindLatest(ctx context.Context, robotID string, fingerprint *string) (*model.ErrorEventModel, error)
	CountByRobotSince(ctx context.Context, since time.Time) ([]RobotErrorCount, error)
	CountCodesBetween(ctx context.Context, from, to time.Time) ([]CodeCount, error)
}

// RobotErrorCount 机器人错误数
type RobotErrorCount struct {
	RobotID string `gorm:"column:robot_id"`
	Count   int64  `gorm:"column:error_count"`
}

// CodeCount 机器人某个错误码的出现次数
type CodeCount struct {
	RobotID string  `gorm:"column:robot_id"`
	Code    *string `gorm:"column:code"`
	Count   int64   `gorm:"column:error_count"`
}

// errorEventRepository 错误事件仓储实现
type errorEventRepository struct {
	db *gorm.DB
}

// NewErrorEventRepository 创建错误事件仓储
func NewErrorEventRepository(db *gorm.DB) ErrorEventRepository {
	return &errorEventRepository{db: db}
}

// Create 追加错误事件
func (r *errorEventRepository) Create(ctx context.Context, ev *model.ErrorEventModel) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

// FindByRobot 查找机器人最近的错误
func (r *errorEventRepository) FindByRobot(ctx context.Context, robotID string, limit int) ([]*model.ErrorEventModel, error) {
	var events []*model.ErrorEventModel
	query := r.db.WithContext(ctx).
		Where("robot_id = ?", robotID).
		Order("ts DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}

// FindLatest 查找机器人最近一次错误,fingerprint 非空时只匹配该指纹
func (r *errorEventRepository) FindLatest(ctx context.Context, robotID string, fingerprint *string) (*model.ErrorEventModel, error) {
	var ev model.ErrorEventModel
	query := r.db.WithContext(ctx).Where("robot_id = ?", robotID)
	if fingerprint != nil {
		query = query.Where("fingerprint = ?", *fingerprint)
	}
	if err := query.Order("ts DESC").Order("id DESC").First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// CountByRobotSince 按机器人统计 ts 晚于 since 的错误数
func (r *errorEventRepository) CountByRobotSince(ctx context.Context, since time.Time) ([]RobotErrorCount, error) {
	var rows []RobotErrorCount
	err := r.db.WithContext(ctx).Model(&model.ErrorEventModel{}).
		Select("robot_id, COUNT(*) AS error_count").
		Where("ts > ?", since).
		Group("robot_id").
		Order("robot_id ASC").
		Scan(&rows).Error
	return rows, err
}

// CountCodesBetween 按机器人和错误码统计 ts 落在 [from, to) 的错误数
func (r *errorEventRepository) CountCodesBetween(ctx context.Context, from, to time.Time) ([]CodeCount, error) {
	var rows []CodeCount
	err := r.db.WithContext(ctx).Model(&model.ErrorEventModel{}).
		Select("robot_id, code, COUNT(*) AS error_count").
		Where("ts >= ? AND ts < ?", from, to).
		Group("robot_id, code").
		Scan(&rows).Error
	return rows, err
}
