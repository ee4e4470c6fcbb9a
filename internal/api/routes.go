package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/guyuan9300-max/fleethub/docs" // 导入生成的 docs 包
	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/websocket"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig 路由和中间件配置
type RouterConfig struct {
	Logger      *logrus.Logger
	Hub         *websocket.Hub
	CORS        config.CORSConfig
	Ingest      config.IngestConfig
	WebSocket   websocket.ClientOptions
	SLA         *SLAConfig
	Production  bool
	Tracing     bool
	ServiceName string
}

// Controllers 路由绑定的控制器
type Controllers struct {
	Health *HealthController
	Ingest *IngestController
	Fleet  *FleetController
	Query  *QueryController
}

// SetupRoutes 配置路由
func SetupRoutes(rc RouterConfig, ctrls Controllers) *gin.Engine {
	logger := rc.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	router := gin.New()

	// 中间件
	router.Use(gin.Recovery())
	if rc.Tracing {
		router.Use(TracingMiddleware(rc.ServiceName))
	}
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware(logger))
	router.Use(SLAMonitorMiddleware(rc.SLA, logger))
	router.Use(CORSMiddleware(rc.CORS))
	router.Use(SecurityHeadersMiddleware(rc.Production))
	router.Use(ErrorHandlerMiddleware())

	// 健康检查
	router.GET("/health", ctrls.Health.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler())

	// Swagger UI 路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/swagger/doc.json"),
	))

	// 实时事件订阅
	if rc.Hub != nil {
		router.GET("/ws", websocket.Handler(rc.Hub, rc.WebSocket))
		router.GET("/sse", SSEHandler(rc.Hub))
	}

	apiGroup := router.Group("/api")
	{
		// 上报路由,按配置限流
		ingest := apiGroup.Group("/ingest", RateLimitMiddleware(rc.Ingest.RateLimitRPS, rc.Ingest.RateLimitBurst))
		{
			ingest.POST("/health", ctrls.Ingest.Health)
			ingest.POST("/job", ctrls.Ingest.Job)
			ingest.POST("/error", ctrls.Ingest.Error)
		}
		apiGroup.POST("/ai/analyze", ctrls.Ingest.Analyze)

		// 机群统计
		apiGroup.GET("/fleet/overview", ctrls.Fleet.Overview)
		apiGroup.GET("/fleet/anomalies", ctrls.Fleet.Anomalies)
		apiGroup.GET("/reports/daily", ctrls.Fleet.DailyReport)

		// 查询
		robots := apiGroup.Group("/robots")
		{
			robots.GET("", ctrls.Query.ListRobots)
			robots.GET("/:id", ctrls.Query.GetRobot)
			robots.GET("/:id/jobs", ctrls.Query.ListRobotJobs)
			robots.GET("/:id/errors", ctrls.Query.ListRobotErrors)
		}
		apiGroup.GET("/jobs", ctrls.Query.ListJobs)
		apiGroup.POST("/diagnostics/package", ctrls.Query.Diagnostics)
	}

	// 未匹配的路由返回 JSON 格式的 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
