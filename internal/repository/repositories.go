package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 绑定到同一个连接(或事务)的一组仓储
type Repositories struct {
	db *gorm.DB

	Robots        RobotRepository
	HealthReports HealthReportRepository
	Jobs          JobRepository
	Errors        ErrorEventRepository
	Analyses      ErrorAnalysisRepository
}

// NewRepositories 创建仓储集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Robots:        NewRobotRepository(db),
		HealthReports: NewHealthReportRepository(db),
		Jobs:          NewJobRepository(db),
		Errors:        NewErrorEventRepository(db),
		Analyses:      NewErrorAnalysisRepository(db),
	}
}

// Transaction 在事务中执行 fn,fn 返回错误时回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
