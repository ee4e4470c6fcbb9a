package model

import (
	"errors"
	"time"
)

// RobotModel 机器人数据模型
// 首次上报心跳时创建,之后每次心跳覆盖可变字段,first_seen_at 保持不变
type RobotModel struct {
	RobotID     string     `gorm:"primaryKey;type:varchar(128)" json:"robot_id"`
	Hostname    *string    `gorm:"type:varchar(255)" json:"hostname"`
	Platform    *string    `gorm:"type:varchar(64)" json:"platform"`
	FirstSeenAt *time.Time `json:"first_seen_at"`
	LastSeenAt  *time.Time `gorm:"index" json:"last_seen_at"`
	Version     *string    `gorm:"type:varchar(64)" json:"version"`
	OK          *bool      `gorm:"column:ok;index" json:"ok"` // nil 表示未知
	HealthScore *int       `gorm:"column:health_score" json:"health_score"`
}

// TableName 指定表名
func (RobotModel) TableName() string {
	return "robots"
}

// Validate 验证机器人模型
func (rm *RobotModel) Validate() error {
	if rm.RobotID == "" {
		return errors.New("robot ID is required")
	}
	if rm.HealthScore != nil && (*rm.HealthScore < 0 || *rm.HealthScore > 100) {
		return errors.New("health score must be within [0, 100]")
	}
	return nil
}
