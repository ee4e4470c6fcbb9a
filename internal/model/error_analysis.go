package model

import (
	"time"

	"github.com/guyuan9300-max/fleethub/internal/document"
)

// ErrorAnalysisModel 错误分析记录(人工或 AI 标注),只追加
// error_id 不做存在性校验
type ErrorAnalysisModel struct {
	ID          uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ErrorID     *uint64           `gorm:"index" json:"error_id"`
	RobotID     *string           `gorm:"type:varchar(128);index" json:"robot_id"`
	Fingerprint *string           `gorm:"type:varchar(255);index" json:"fingerprint"`
	Analysis    document.Document `json:"analysis"`
	CreatedAt   time.Time         `gorm:"autoCreateTime:false;not null;index" json:"created_at"`
}

// TableName 指定表名
func (ErrorAnalysisModel) TableName() string {
	return "error_analyses"
}
