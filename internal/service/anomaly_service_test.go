package service

import (
	"context"
	"testing"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anomaliesOfType(anomalies []Anomaly, typ string) []Anomaly {
	var out []Anomaly
	for _, a := range anomalies {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

// TestDetect_StuckJobThreshold 测试 RUNNING 任务 16 分钟无更新被报告,14 分钟不报告
func TestDetect_StuckJobThreshold(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	var in JobInput
	decodeInput(t, `{"job_id":"j1","robot_id":"r1","status":"RUNNING"}`, &in)
	_, err := env.ingest.IngestJob(ctx, &in)
	require.NoError(t, err)

	env.clock.Advance(14 * time.Minute)
	anomalies, err := env.anomaly.Detect(ctx)
	require.NoError(t, err)
	assert.Empty(t, anomaliesOfType(anomalies, AnomalyStuck))

	env.clock.Advance(2 * time.Minute)
	anomalies, err = env.anomaly.Detect(ctx)
	require.NoError(t, err)
	stuck := anomaliesOfType(anomalies, AnomalyStuck)
	require.Len(t, stuck, 1)
	assert.Equal(t, "r1", stuck[0].RobotID)
	assert.Equal(t, "j1", *stuck[0].JobID)
	assert.Equal(t, "任务卡住超过15分钟", stuck[0].Message)

	// 没有状态变化的再次上报会刷新 updated_at
	_, err = env.ingest.IngestJob(ctx, &in)
	require.NoError(t, err)
	anomalies, err = env.anomaly.Detect(ctx)
	require.NoError(t, err)
	assert.Empty(t, anomaliesOfType(anomalies, AnomalyStuck))
}

// TestDetect_OneAnomalyPerStuckJob 测试同一机器人多个卡住任务分别报告
func TestDetect_OneAnomalyPerStuckJob(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	for _, id := range []string{"j1", "j2"} {
		require.NoError(t, env.repos.Jobs.Upsert(ctx, &model.JobModel{
			JobID: id, RobotID: "r1", Status: strPtr("RUNNING"), UpdatedAt: testNow.Add(-time.Hour),
		}))
	}

	anomalies, err := env.anomaly.Detect(ctx)
	require.NoError(t, err)
	assert.Len(t, anomaliesOfType(anomalies, AnomalyStuck), 2)
}

// TestDetect_Offline 测试离线检测,从未上报的机器人视为离线
func TestDetect_Offline(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	require.NoError(t, env.repos.Robots.Upsert(ctx, &model.RobotModel{RobotID: "fresh", LastSeenAt: timePtr(testNow.Add(-9 * time.Minute))}))
	require.NoError(t, env.repos.Robots.Upsert(ctx, &model.RobotModel{RobotID: "stale", LastSeenAt: timePtr(testNow.Add(-11 * time.Minute))}))
	require.NoError(t, env.repos.Robots.Upsert(ctx, &model.RobotModel{RobotID: "never"}))

	anomalies, err := env.anomaly.Detect(ctx)
	require.NoError(t, err)

	offline := anomaliesOfType(anomalies, AnomalyOffline)
	require.Len(t, offline, 2)
	assert.Equal(t, "never", offline[0].RobotID)
	assert.Nil(t, offline[0].LastSeenAt)
	assert.Equal(t, "stale", offline[1].RobotID)
	require.NotNil(t, offline[1].LastSeenAt)
	assert.True(t, offline[1].LastSeenAt.Equal(testNow.Add(-11*time.Minute)))
	assert.Equal(t, "超过10分钟无心跳", offline[1].Message)
}

// TestDetect_ErrorBurst 测试一小时内错误数达到阈值
func TestDetect_ErrorBurst(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	add := func(robot string, ago time.Duration) {
		require.NoError(t, env.repos.Errors.Create(ctx, &model.ErrorEventModel{RobotID: robot, TS: testNow.Add(-ago)}))
	}
	add("burst", time.Minute)
	add("burst", 10*time.Minute)
	add("burst", 59*time.Minute)
	add("quiet", time.Minute)
	add("quiet", 2*time.Minute)
	add("quiet", 61*time.Minute)

	anomalies, err := env.anomaly.Detect(ctx)
	require.NoError(t, err)

	burst := anomaliesOfType(anomalies, AnomalyErrorBurst)
	require.Len(t, burst, 1)
	assert.Equal(t, "burst", burst[0].RobotID)
	assert.Equal(t, "过去1小时错误3次", burst[0].Message)
}

// TestDetect_NoMemory 测试重复检测返回相同结果
func TestDetect_NoMemory(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)
	require.NoError(t, env.repos.Robots.Upsert(ctx, &model.RobotModel{RobotID: "never"}))

	first, err := env.anomaly.Detect(ctx)
	require.NoError(t, err)
	second, err := env.anomaly.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestDetect_Order 测试输出顺序为离线、错误激增、卡住
func TestDetect_Order(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	require.NoError(t, env.repos.Jobs.Upsert(ctx, &model.JobModel{JobID: "j", RobotID: "r", Status: strPtr("RUNNING"), UpdatedAt: testNow.Add(-time.Hour)}))
	for i := 0; i < 3; i++ {
		require.NoError(t, env.repos.Errors.Create(ctx, &model.ErrorEventModel{RobotID: "r", TS: testNow}))
	}
	require.NoError(t, env.repos.Robots.Upsert(ctx, &model.RobotModel{RobotID: "r"}))

	anomalies, err := env.anomaly.Detect(ctx)
	require.NoError(t, err)
	require.Len(t, anomalies, 3)
	assert.Equal(t, AnomalyOffline, anomalies[0].Type)
	assert.Equal(t, AnomalyErrorBurst, anomalies[1].Type)
	assert.Equal(t, AnomalyStuck, anomalies[2].Type)
}

// TestHumanDuration 测试阈值描述
func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "10分钟", humanDuration(10*time.Minute))
	assert.Equal(t, "1小时", humanDuration(time.Hour))
	assert.Equal(t, "90分钟", humanDuration(90*time.Minute))
}
