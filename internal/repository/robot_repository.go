package repository

import (
	"context"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RobotRepository 机器人仓储接口
type RobotRepository interface {
	Upsert(ctx context.Context, robot *model.RobotModel) error
	FindByID(ctx context.Context, robotID string) (*model.RobotModel, error)
	FindAll(ctx context.Context) ([]*model.RobotModel, error)
	FindAllOrderByID(ctx context.Context) ([]*model.RobotModel, error)
	Count(ctx context.Context) (int64, error)
	CountByOK(ctx context.Context, ok bool) (int64, error)
	FindOffline(ctx context.Context, cutoff time.Time) ([]*model.RobotModel, error)
}

// robotRepository 机器人仓储实现
type robotRepository struct {
	db *gorm.DB
}

// NewRobotRepository 创建机器人仓储
func NewRobotRepository(db *gorm.DB) RobotRepository {
	return &robotRepository{db: db}
}

// Upsert 插入或更新机器人,冲突时不覆盖 first_seen_at
func (r *robotRepository) Upsert(ctx context.Context, robot *model.RobotModel) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "robot_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hostname", "platform", "last_seen_at", "version", "ok", "health_score",
		}),
	}).Create(robot).Error
}

// FindByID 根据 ID 查找机器人
func (r *robotRepository) FindByID(ctx context.Context, robotID string) (*model.RobotModel, error) {
	var robot model.RobotModel
	if err := r.db.WithContext(ctx).Where("robot_id = ?", robotID).First(&robot).Error; err != nil {
		return nil, err
	}
	return &robot, nil
}

// FindAll 查找所有机器人,按最近心跳倒序,从未上报的排在最后
func (r *robotRepository) FindAll(ctx context.Context) ([]*model.RobotModel, error) {
	var robots []*model.RobotModel
	err := r.db.WithContext(ctx).
		Order("last_seen_at IS NULL, last_seen_at DESC").
		Order("robot_id ASC").
		Find(&robots).Error
	return robots, err
}

// FindAllOrderByID 查找所有机器人,按 ID 排序
func (r *robotRepository) FindAllOrderByID(ctx context.Context) ([]*model.RobotModel, error) {
	var robots []*model.RobotModel
	err := r.db.WithContext(ctx).Order("robot_id ASC").Find(&robots).Error
	return robots, err
}

// Count 机器人总数
func (r *robotRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RobotModel{}).Count(&count).Error
	return count, err
}

// CountByOK 统计 ok 为指定值的机器人数,ok 未知的不计入
func (r *robotRepository) CountByOK(ctx context.Context, ok bool) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RobotModel{}).Where("ok = ?", ok).Count(&count).Error
	return count, err
}

// FindOffline 查找最近心跳早于 cutoff 或从未上报的机器人
func (r *robotRepository) FindOffline(ctx context.Context, cutoff time.Time) ([]*model.RobotModel, error) {
	var robots []*model.RobotModel
	err := r.db.WithContext(ctx).
		Where("last_seen_at IS NULL OR last_seen_at < ?", cutoff).
		Order("robot_id ASC").
		Find(&robots).Error
	return robots, err
}
