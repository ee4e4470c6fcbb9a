package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQueryController_Robots 测试机器人列表和详情
func TestQueryController_Robots(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})
	seedFleet(t, env)

	w := env.do("GET", "/api/robots", "")
	require.Equal(t, http.StatusOK, w.Code)
	var robots []map[string]interface{}
	decodeData(t, w, &robots)
	require.Len(t, robots, 2)
	assert.Equal(t, "r1", robots[0]["robot_id"])

	w = env.do("GET", "/api/robots/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Robot        map[string]interface{}   `json:"robot"`
		LatestReport map[string]interface{}   `json:"latest_report"`
		Jobs         []map[string]interface{} `json:"jobs"`
		Errors       []map[string]interface{} `json:"errors"`
	}
	decodeData(t, w, &detail)
	assert.Equal(t, "r1", detail.Robot["robot_id"])
	assert.Equal(t, "r1", detail.LatestReport["robot_id"])
	assert.Len(t, detail.Jobs, 2)
	assert.Empty(t, detail.Errors)
}

// TestQueryController_RobotNotFound 测试未知机器人返回 404
func TestQueryController_RobotNotFound(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})

	w := env.do("GET", "/api/robots/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, decodeError(t, w).Code)

	// 未知机器人的任务和错误列表为空
	w = env.do("GET", "/api/robots/ghost/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []interface{}
	decodeData(t, w, &jobs)
	assert.Empty(t, jobs)
}

// TestQueryController_InvalidRobotID 测试非法机器人 ID
func TestQueryController_InvalidRobotID(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})

	w := env.do("GET", "/api/robots/bad%20id", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid robot ID", decodeError(t, w).Message)
}

// TestQueryController_Jobs 测试任务列表和状态过滤
func TestQueryController_Jobs(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})
	seedFleet(t, env)

	w := env.do("GET", "/api/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]interface{}
	decodeData(t, w, &all)
	assert.Len(t, all, 2)

	w = env.do("GET", "/api/jobs?status=RUNNING", "")
	require.Equal(t, http.StatusOK, w.Code)
	var running []map[string]interface{}
	decodeData(t, w, &running)
	require.Len(t, running, 1)
	assert.Equal(t, "j2", running[0]["job_id"])

	w = env.do("GET", "/api/robots/r2/errors", "")
	require.Equal(t, http.StatusOK, w.Code)
	var errs []map[string]interface{}
	decodeData(t, w, &errs)
	require.Len(t, errs, 3)
	assert.Equal(t, "E1", errs[0]["code"])
}

// TestQueryController_Diagnostics 测试诊断包
func TestQueryController_Diagnostics(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})
	seedFleet(t, env)

	w := env.do("POST", "/api/ingest/error", `{"robot_id":"r1","job_id":"j2","code":"E9","fingerprint":"fp-9","ts":"2024-05-01T11:59:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("POST", "/api/diagnostics/package", `{"robot_id":"r1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var pkg struct {
		RobotID      string                 `json:"robot_id"`
		Error        map[string]interface{} `json:"error"`
		Job          map[string]interface{} `json:"job"`
		LatestHealth json.RawMessage        `json:"latest_health"`
		Analyses     []interface{}          `json:"analyses"`
	}
	decodeData(t, w, &pkg)
	assert.Equal(t, "r1", pkg.RobotID)
	assert.Equal(t, "E9", pkg.Error["code"])
	assert.Equal(t, "j2", pkg.Job["job_id"])
	assert.NotEqual(t, "null", string(pkg.LatestHealth))
	assert.Empty(t, pkg.Analyses)

	w = env.do("POST", "/api/diagnostics/package", `{"fingerprint":"fp-9"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
