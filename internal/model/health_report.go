package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// HealthReportModel 心跳上报记录,只追加不修改
type HealthReportModel struct {
	ID       uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	RobotID  string         `gorm:"type:varchar(128);not null;index" json:"robot_id"`
	ReportAt time.Time      `gorm:"not null;index" json:"report_at"`
	OK       *bool          `gorm:"column:ok" json:"ok"`
	Payload  datatypes.JSON `json:"payload"` // 原始上报内容

	Robot *RobotModel `gorm:"foreignKey:RobotID;references:RobotID" json:"-"`
}

// TableName 指定表名
func (HealthReportModel) TableName() string {
	return "health_reports"
}

// Validate 验证心跳记录
func (hrm *HealthReportModel) Validate() error {
	if hrm.RobotID == "" {
		return errors.New("robot ID is required")
	}
	if hrm.ReportAt.IsZero() {
		return errors.New("report time is required")
	}
	return nil
}
