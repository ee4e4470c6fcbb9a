package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/document"
	"github.com/guyuan9300-max/fleethub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetRobot_NotFound 测试机器人不存在
func TestGetRobot_NotFound(t *testing.T) {
	env := setupTestEnv(t, testNow)

	_, err := env.query.GetRobot(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestGetRobot_Detail 测试机器人详情
func TestGetRobot_Detail(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	var hb HealthReportInput
	decodeInput(t, `{"robot_id":"r1","hostname":"alpha","health":{"ok":true}}`, &hb)
	_, err := env.ingest.IngestHealth(ctx, &hb)
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		require.NoError(t, env.repos.Errors.Create(ctx, &model.ErrorEventModel{RobotID: "r1", TS: testNow.Add(time.Duration(i) * time.Second)}))
	}
	require.NoError(t, env.repos.Jobs.Upsert(ctx, &model.JobModel{JobID: "j1", RobotID: "r1", UpdatedAt: testNow}))

	detail, err := env.query.GetRobot(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", *detail.Robot.Hostname)
	assert.Len(t, detail.Jobs, 1)
	assert.Len(t, detail.Errors, 20)
	assert.True(t, detail.Errors[0].TS.Equal(testNow.Add(24*time.Second)))

	var latest map[string]interface{}
	require.NoError(t, json.Unmarshal(detail.LatestReport, &latest))
	assert.Equal(t, "r1", latest["robot_id"])
}

// TestListRobotJobsAndErrors 测试未知机器人返回空列表
func TestListRobotJobsAndErrors(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	jobs, err := env.query.ListRobotJobs(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, jobs)

	errs, err := env.query.ListRobotErrors(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, errs)
}

// TestListJobs_StatusFilter 测试任务列表状态过滤
func TestListJobs_StatusFilter(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	require.NoError(t, env.repos.Jobs.Upsert(ctx, &model.JobModel{JobID: "a", RobotID: "r1", Status: strPtr("RUNNING"), UpdatedAt: testNow}))
	require.NoError(t, env.repos.Jobs.Upsert(ctx, &model.JobModel{JobID: "b", RobotID: "r1", Status: strPtr("DONE"), UpdatedAt: testNow}))

	all, err := env.query.ListJobs(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	running, err := env.query.ListJobs(ctx, strPtr("RUNNING"))
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "a", running[0].JobID)
}

// TestDiagnosticsPackage 测试诊断包组装
func TestDiagnosticsPackage(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, testNow)

	require.NoError(t, env.repos.Jobs.Upsert(ctx, &model.JobModel{JobID: "j1", RobotID: "r1", Title: strPtr("pick"), UpdatedAt: testNow}))
	require.NoError(t, env.repos.Errors.Create(ctx, &model.ErrorEventModel{RobotID: "r1", JobID: strPtr("j1"), TS: testNow.Add(-time.Hour), Fingerprint: strPtr("fp-a")}))
	require.NoError(t, env.repos.Errors.Create(ctx, &model.ErrorEventModel{RobotID: "r1", TS: testNow, Fingerprint: strPtr("fp-b")}))
	require.NoError(t, env.repos.Analyses.Create(ctx, &model.ErrorAnalysisModel{
		Fingerprint: strPtr("fp-a"), Analysis: *document.New().Set("cause", document.String("cable")), CreatedAt: testNow,
	}))

	pkg, err := env.query.DiagnosticsPackage(ctx, "r1", strPtr("fp-a"))
	require.NoError(t, err)
	require.NotNil(t, pkg.Error)
	assert.Equal(t, "fp-a", *pkg.Error.Fingerprint)
	require.NotNil(t, pkg.Job)
	assert.Equal(t, "pick", *pkg.Job.Title)
	assert.Nil(t, pkg.LatestHealth)
	assert.Len(t, pkg.Analyses, 1)

	latest, err := env.query.DiagnosticsPackage(ctx, "r1", nil)
	require.NoError(t, err)
	assert.Equal(t, "fp-b", *latest.Error.Fingerprint)
	assert.Nil(t, latest.Job)
	assert.Empty(t, latest.Analyses)

	empty, err := env.query.DiagnosticsPackage(ctx, "ghost", nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Error)
	assert.Nil(t, empty.Job)

	out, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"robot_id":"ghost","error":null,"job":null,"latest_health":null,"analyses":[]}`, string(out))
}
