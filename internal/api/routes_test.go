package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoutes_NotFound 测试未匹配路由返回 JSON 404
func TestRoutes_NotFound(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})

	w := env.do("GET", "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "route not found", resp.Message)
}

// TestRoutes_RequestID 测试请求 ID 透传和生成
func TestRoutes_RequestID(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})

	w := env.do("GET", "/api/robots", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/api/robots", nil)
	req.Header.Set("X-Request-ID", "custom-request-id")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, "custom-request-id", w.Header().Get("X-Request-ID"))
}

// TestRoutes_CORSPreflight 测试预检请求
func TestRoutes_CORSPreflight(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})

	req := httptest.NewRequest("OPTIONS", "/api/ingest/health", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

// TestRoutes_SecurityHeaders 测试安全头
func TestRoutes_SecurityHeaders(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})

	w := env.do("GET", "/health", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

// TestRoutes_Health 测试健康检查
func TestRoutes_Health(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})

	w := env.do("GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	checks, ok := resp["checks"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "not configured", checks["redis"])
}

// TestRoutes_Metrics 测试指标端点包含上报计数
func TestRoutes_Metrics(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})
	require.Equal(t, http.StatusOK, env.do("POST", "/api/ingest/health", `{"robot_id":"r1"}`).Code)

	w := env.do("GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `fleet_ingested_total{kind="health",source="http"}`))
	assert.True(t, strings.Contains(body, "api_requests_total"))
}

// TestRoutes_SwaggerDoc 测试 Swagger 文档覆盖所有接口
func TestRoutes_SwaggerDoc(t *testing.T) {
	env := setupAPI(t, config.IngestConfig{})

	w := env.do("GET", "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "FleetHub API", doc.Info.Title)

	routes := map[string]string{
		"/health":                  "get",
		"/api/ingest/health":       "post",
		"/api/ingest/job":          "post",
		"/api/ingest/error":        "post",
		"/api/ai/analyze":          "post",
		"/api/fleet/overview":      "get",
		"/api/fleet/anomalies":     "get",
		"/api/reports/daily":       "get",
		"/api/robots":              "get",
		"/api/robots/{id}":         "get",
		"/api/robots/{id}/jobs":    "get",
		"/api/robots/{id}/errors":  "get",
		"/api/jobs":                "get",
		"/api/diagnostics/package": "post",
	}
	for path, method := range routes {
		assert.Contains(t, doc.Paths[path], method, path)
	}
}
