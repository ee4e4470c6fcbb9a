// Package event 定义推送给实时观察者的领域事件
// 领域事件不落库,没有订阅者时直接丢弃
package event

import (
	"sync"
	"time"
)

// Type 事件类型
type Type string

const (
	TypeRobotHeartbeat  Type = "robot.heartbeat"
	TypeJobUpdated      Type = "job.updated"
	TypeErrorRaised     Type = "error.raised"
	TypeAnalysisCreated Type = "analysis.created"
)

// DomainEvent 领域事件
type DomainEvent interface {
	EventType() Type
	Timestamp() time.Time
}

// Publisher 领域事件发布者
// 发布是尽力而为的,不向调用方返回错误
type Publisher interface {
	Publish(ev DomainEvent)
}

// RobotHeartbeat 机器人心跳事件
type RobotHeartbeat struct {
	Type        Type      `json:"type"`
	TS          time.Time `json:"ts"`
	RobotID     string    `json:"robot_id"`
	OK          *bool     `json:"ok"`
	HealthScore int       `json:"health_score"`
}

// NewRobotHeartbeat 创建心跳事件
func NewRobotHeartbeat(ts time.Time, robotID string, ok *bool, healthScore int) *RobotHeartbeat {
	return &RobotHeartbeat{
		Type:        TypeRobotHeartbeat,
		TS:          ts,
		RobotID:     robotID,
		OK:          ok,
		HealthScore: healthScore,
	}
}

func (e *RobotHeartbeat) EventType() Type      { return TypeRobotHeartbeat }
func (e *RobotHeartbeat) Timestamp() time.Time { return e.TS }

// JobUpdated 任务更新事件
type JobUpdated struct {
	Type     Type      `json:"type"`
	TS       time.Time `json:"ts"`
	RobotID  string    `json:"robot_id"`
	JobID    string    `json:"job_id"`
	Status   *string   `json:"status"`
	Progress *float64  `json:"progress"`
}

// NewJobUpdated 创建任务更新事件
func NewJobUpdated(ts time.Time, robotID, jobID string, status *string, progress *float64) *JobUpdated {
	return &JobUpdated{
		Type:     TypeJobUpdated,
		TS:       ts,
		RobotID:  robotID,
		JobID:    jobID,
		Status:   status,
		Progress: progress,
	}
}

func (e *JobUpdated) EventType() Type      { return TypeJobUpdated }
func (e *JobUpdated) Timestamp() time.Time { return e.TS }

// ErrorRaised 错误上报事件
type ErrorRaised struct {
	Type    Type      `json:"type"`
	TS      time.Time `json:"ts"`
	RobotID string    `json:"robot_id"`
	JobID   *string   `json:"job_id"`
	Code    *string   `json:"code"`
	Message *string   `json:"message"`
}

// NewErrorRaised 创建错误事件
func NewErrorRaised(ts time.Time, robotID string, jobID, code, message *string) *ErrorRaised {
	return &ErrorRaised{
		Type:    TypeErrorRaised,
		TS:      ts,
		RobotID: robotID,
		JobID:   jobID,
		Code:    code,
		Message: message,
	}
}

func (e *ErrorRaised) EventType() Type      { return TypeErrorRaised }
func (e *ErrorRaised) Timestamp() time.Time { return e.TS }

// AnalysisCreated 错误分析创建事件
type AnalysisCreated struct {
	Type        Type      `json:"type"`
	TS          time.Time `json:"ts"`
	RobotID     *string   `json:"robot_id"`
	Fingerprint *string   `json:"fingerprint"`
}

// NewAnalysisCreated 创建分析事件
func NewAnalysisCreated(ts time.Time, robotID, fingerprint *string) *AnalysisCreated {
	return &AnalysisCreated{
		Type:        TypeAnalysisCreated,
		TS:          ts,
		RobotID:     robotID,
		Fingerprint: fingerprint,
	}
}

func (e *AnalysisCreated) EventType() Type      { return TypeAnalysisCreated }
func (e *AnalysisCreated) Timestamp() time.Time { return e.TS }

// Recorder 记录所有发布的事件,用于测试和调试
type Recorder struct {
	mu     sync.Mutex
	events []DomainEvent
}

// Publish 实现 Publisher
func (r *Recorder) Publish(ev DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events 返回已记录事件的副本
func (r *Recorder) Events() []DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}
