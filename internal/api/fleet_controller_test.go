package api_test

import (
	"net/http"
	"testing"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFleet(t *testing.T, env *apiEnv) {
	t.Helper()
	bodies := []struct{ path, body string }{
		{"/api/ingest/health", `{"robot_id":"r1","report_at":"2024-05-01T11:58:00Z","health":{"ok":true}}`},
		{"/api/ingest/health", `{"robot_id":"r2","report_at":"2024-05-01T09:00:00Z","health":{"ok":false}}`},
		{"/api/ingest/job", `{"job_id":"j1","robot_id":"r1","status":"DONE","started_at":"2024-05-01T08:00:00Z","ended_at":"2024-05-01T10:00:00Z","work_units_done":40}`},
		{"/api/ingest/job", `{"job_id":"j2","robot_id":"r1","status":"RUNNING","started_at":"2024-05-01T11:00:00Z"}`},
		{"/api/ingest/error", `{"robot_id":"r2","code":"E2","ts":"2024-05-01T11:30:00Z"}`},
		{"/api/ingest/error", `{"robot_id":"r2","code":"E1","ts":"2024-05-01T11:40:00Z"}`},
		{"/api/ingest/error", `{"robot_id":"r2","code":"E1","ts":"2024-05-01T11:50:00Z"}`},
	}
	for _, b := range bodies {
		w := env.do("POST", b.path, b.body)
		require.Equal(t, http.StatusOK, w.Code, b.body)
	}
}

// TestFleetController_Overview 测试机群概览
func TestFleetController_Overview(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})
	seedFleet(t, env)

	w := env.do("GET", "/api/fleet/overview", "")
	require.Equal(t, http.StatusOK, w.Code)

	var overview service.FleetOverview
	decodeData(t, w, &overview)
	assert.Equal(t, int64(2), overview.TotalCount)
	assert.Equal(t, int64(1), overview.OnlineCount)
	assert.Equal(t, int64(1), overview.ErrorCount)
	assert.Equal(t, int64(1), overview.RunningCount)
	assert.Equal(t, int64(0), overview.IdleCount)
	assert.Equal(t, int64(1), overview.TodayJobsDone)
	assert.Equal(t, int64(40), overview.TodayWorkUnitsTotal)
	assert.Equal(t, int64(0), overview.StuckJobsCount)
}

// TestFleetController_Anomalies 测试异常列表
func TestFleetController_Anomalies(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})
	seedFleet(t, env)

	w := env.do("GET", "/api/fleet/anomalies", "")
	require.Equal(t, http.StatusOK, w.Code)

	var anomalies []service.Anomaly
	decodeData(t, w, &anomalies)
	require.Len(t, anomalies, 2)
	assert.Equal(t, service.AnomalyOffline, anomalies[0].Type)
	assert.Equal(t, "r2", anomalies[0].RobotID)
	assert.Equal(t, service.AnomalyErrorBurst, anomalies[1].Type)
	assert.Equal(t, "r2", anomalies[1].RobotID)
}

// TestFleetController_DailyReport 测试日报和日期参数
func TestFleetController_DailyReport(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})
	seedFleet(t, env)

	w := env.do("GET", "/api/reports/daily?date=2024-05-01", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report service.DailyReport
	decodeData(t, w, &report)
	assert.Equal(t, "2024-05-01", report.Date)
	require.Len(t, report.Reports, 2)
	assert.Equal(t, "r1", report.Reports[0].RobotID)
	assert.Equal(t, int64(1), report.Reports[0].JobsDone)
	assert.Equal(t, int64(40), report.Reports[0].WorkUnits)

	r2 := report.Reports[1]
	require.Len(t, r2.TopErrors, 2)
	assert.Equal(t, "E1", *r2.TopErrors[0].Code)
	assert.Equal(t, int64(2), r2.TopErrors[0].Count)
	assert.Equal(t, "E2", *r2.TopErrors[1].Code)

	// 无法解析的日期回退到今天
	w = env.do("GET", "/api/reports/daily?date=yesterday", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fallback service.DailyReport
	decodeData(t, w, &fallback)
	assert.Equal(t, "2024-05-01", fallback.Date)

	w = env.do("GET", "/api/reports/daily?date=2024-04-30", "")
	require.Equal(t, http.StatusOK, w.Code)
	var previous service.DailyReport
	decodeData(t, w, &previous)
	assert.Equal(t, "2024-04-30", previous.Date)
	require.Len(t, previous.Reports, 2)
	assert.Equal(t, int64(0), previous.Reports[0].JobsDone)
	assert.NotNil(t, previous.Reports[0].TopErrors)
	assert.Empty(t, previous.Reports[0].TopErrors)
}
