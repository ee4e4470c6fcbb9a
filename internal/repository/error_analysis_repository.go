package repository

import (
	"context"

	"github.com/guyuan9300-max/fleethub/internal/model"
	"gorm.io/gorm"
)

// ErrorAnalysisRepository 错误分析仓储接口
type ErrorAnalysisRepository interface {
	Create(ctx context.Context, analysis *model.ErrorAnalysisModel) error
	FindByFingerprint(ctx context.Context, fingerprint string, limit int) ([]*model.ErrorAnalysisModel, error)
}

// errorAnalysisRepository 错误分析仓储实现
type errorAnalysisRepository struct {
	db *gorm.DB
}

// NewErrorAnalysisRepository 创建错误分析仓储
func NewErrorAnalysisRepository(db *gorm.DB) ErrorAnalysisRepository {
	return &errorAnalysisRepository{db: db}
}

// Create 追加错误分析
func (r *errorAnalysisRepository) Create(ctx context.Context, analysis *model.ErrorAnalysisModel) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

// FindByFingerprint 查找指纹对应的分析记录,最新的在前
func (r *errorAnalysisRepository) FindByFingerprint(ctx context.Context, fingerprint string, limit int) ([]*model.ErrorAnalysisModel, error) {
	var analyses []*model.ErrorAnalysisModel
	query := r.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&analyses).Error
	return analyses, err
}
