package model

import (
	"errors"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/document"
)

// 已知的任务状态,status 本身是自由字符串
const (
	JobStatusRunning = "RUNNING"
	JobStatusDone    = "DONE"
)

// JobModel 任务数据模型
// 按 job_id 整行覆盖写入,updated_at 由服务端在每次写入时设置
type JobModel struct {
	JobID          string                `gorm:"primaryKey;type:varchar(128)" json:"job_id"`
	RobotID        string                `gorm:"type:varchar(128);not null;index" json:"robot_id"`
	JobType        *string               `gorm:"type:varchar(64)" json:"job_type"`
	Title          *string               `gorm:"type:varchar(255)" json:"title"`
	Status         *string               `gorm:"type:varchar(32);index" json:"status"`
	Priority       *int                  `json:"priority"`
	CreatedAt      *time.Time            `gorm:"autoCreateTime:false;index" json:"created_at"`
	StartedAt      *time.Time            `json:"started_at"`
	EndedAt        *time.Time            `gorm:"index" json:"ended_at"`
	Progress       *float64              `json:"progress"` // 0.0 - 1.0
	Stage          *string               `gorm:"type:varchar(128)" json:"stage"`
	WorkUnitsTotal *int64                `json:"work_units_total"`
	WorkUnitsDone  *int64                `json:"work_units_done"`
	Metrics        document.Document     `json:"metrics"`
	LastError      document.NullDocument `json:"last_error"`
	UpdatedAt      time.Time             `gorm:"autoUpdateTime:false;not null;index" json:"updated_at"`

	Robot *RobotModel `gorm:"foreignKey:RobotID;references:RobotID" json:"-"`
}

// TableName 指定表名
func (JobModel) TableName() string {
	return "jobs"
}

// IsRunning 任务是否处于 RUNNING 状态
func (jm *JobModel) IsRunning() bool {
	return jm.Status != nil && *jm.Status == JobStatusRunning
}

// IsStuck 任务处于 RUNNING 且 updated_at 早于 cutoff
func (jm *JobModel) IsStuck(cutoff time.Time) bool {
	return jm.IsRunning() && jm.UpdatedAt.Before(cutoff)
}

// Validate 验证任务模型
func (jm *JobModel) Validate() error {
	if jm.JobID == "" {
		return errors.New("job ID is required")
	}
	if jm.RobotID == "" {
		return errors.New("robot ID is required")
	}
	if jm.UpdatedAt.IsZero() {
		return errors.New("updated time is required")
	}
	return nil
}
