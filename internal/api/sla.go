package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guyuan9300-max/fleethub/internal/metrics"
	"github.com/sirupsen/logrus"
)

// 请求分类
const (
	OperationIngest = "ingest"
	OperationReport = "report"
	OperationQuery  = "query"
)

// SLAConfig 各类请求的响应时间预算
type SLAConfig struct {
	IngestMaxTime time.Duration // 上报
	ReportMaxTime time.Duration // 概览、异常、日报等聚合查询
	QueryMaxTime  time.Duration // 列表和详情查询
}

// DefaultSLAConfig 返回默认 SLA 配置
func DefaultSLAConfig() *SLAConfig {
	return &SLAConfig{
		IngestMaxTime: 200 * time.Millisecond,
		ReportMaxTime: 2 * time.Second,
		QueryMaxTime:  500 * time.Millisecond,
	}
}

// getOperation 根据路由模板判断请求分类,不在预算内的路由返回空字符串
func getOperation(c *gin.Context) string {
	route := c.FullPath()
	switch {
	case strings.HasPrefix(route, "/api/ingest/"), route == "/api/ai/analyze":
		return OperationIngest
	case strings.HasPrefix(route, "/api/fleet/"), strings.HasPrefix(route, "/api/reports/"):
		return OperationReport
	case strings.HasPrefix(route, "/api/"):
		return OperationQuery
	default:
		return ""
	}
}

// Budget 返回分类对应的预算,0 表示不检查
func (cfg *SLAConfig) Budget(operation string) time.Duration {
	switch operation {
	case OperationIngest:
		return cfg.IngestMaxTime
	case OperationReport:
		return cfg.ReportMaxTime
	case OperationQuery:
		return cfg.QueryMaxTime
	default:
		return 0
	}
}

// CheckSLA 检查请求耗时是否在预算内
func CheckSLA(operation string, duration time.Duration, cfg *SLAConfig) bool {
	budget := cfg.Budget(operation)
	return budget <= 0 || duration <= budget
}

// SLAMonitorMiddleware SLA 监控中间件,超出预算的请求记录指标和告警日志
func SLAMonitorMiddleware(cfg *SLAConfig, logger *logrus.Logger) gin.HandlerFunc {
	if cfg == nil {
		cfg = DefaultSLAConfig()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		operation := getOperation(c)
		if operation == "" {
			return
		}

		duration := time.Since(start)
		if CheckSLA(operation, duration, cfg) {
			return
		}

		metrics.RecordSlowRequest(operation)
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"operation":  operation,
				"path":       c.Request.URL.Path,
				"duration":   duration.String(),
				"expected":   cfg.Budget(operation).String(),
			}).Warn("request exceeded latency budget")
		}
	}
}
