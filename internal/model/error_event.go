package model

import (
	"errors"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/document"
)

// ErrorEventModel 错误事件,只追加;相同 fingerprint 的错误视为同一类问题
type ErrorEventModel struct {
	ID          uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	RobotID     string            `gorm:"type:varchar(128);not null;index" json:"robot_id"`
	JobID       *string           `gorm:"type:varchar(128);index" json:"job_id"`
	TS          time.Time         `gorm:"column:ts;not null;index" json:"ts"`
	Code        *string           `gorm:"type:varchar(64)" json:"code"`
	Message     *string           `gorm:"type:text" json:"message"`
	Fingerprint *string           `gorm:"type:varchar(255);index" json:"fingerprint"`
	Context     document.Document `json:"context"`

	Robot *RobotModel `gorm:"foreignKey:RobotID;references:RobotID" json:"-"`
}

// TableName 指定表名
func (ErrorEventModel) TableName() string {
	return "errors"
}

// Validate 验证错误事件
func (eem *ErrorEventModel) Validate() error {
	if eem.RobotID == "" {
		return errors.New("robot ID is required")
	}
	if eem.TS.IsZero() {
		return errors.New("error time is required")
	}
	return nil
}
