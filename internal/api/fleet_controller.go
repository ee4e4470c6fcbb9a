package api

import (
	"github.com/gin-gonic/gin"
	"github.com/guyuan9300-max/fleethub/internal/service"
)

// FleetController 机群概览、异常和日报
type FleetController struct {
	statisticsService service.StatisticsService
	anomalyService    service.AnomalyService
}

// NewFleetController 创建机群控制器
func NewFleetController(statisticsService service.StatisticsService, anomalyService service.AnomalyService) *FleetController {
	return &FleetController{
		statisticsService: statisticsService,
		anomalyService:    anomalyService,
	}
}

// Overview 机群概览
// @Summary      机群概览
// @Description  在线、错误、运行中、卡住任务数和今日产出
// @Tags         机群
// @Produce      json
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /api/fleet/overview [get]
func (c *FleetController) Overview(ctx *gin.Context) {
	overview, err := c.statisticsService.FleetOverview(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err, "failed to compute fleet overview")
		return
	}
	Success(ctx, overview)
}

// Anomalies 当前异常列表
// @Summary      异常列表
// @Description  离线、错误突增和卡住任务
// @Tags         机群
// @Produce      json
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /api/fleet/anomalies [get]
func (c *FleetController) Anomalies(ctx *gin.Context) {
	anomalies, err := c.anomalyService.Detect(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err, "failed to detect anomalies")
		return
	}
	Success(ctx, anomalies)
}

// DailyReport 日报,date 缺省或无法解析时为今天
// @Summary      机群日报
// @Description  按机器人汇总当日完成任务、工作量和高频错误码
// @Tags         机群
// @Produce      json
// @Param        date query string false "日期 YYYY-MM-DD,缺省为今天(UTC)"
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /api/reports/daily [get]
func (c *FleetController) DailyReport(ctx *gin.Context) {
	date := service.ParseReportDate(ctx.Query("date"), c.statisticsService.Today())
	report, err := c.statisticsService.DailyReport(ctx.Request.Context(), date)
	if err != nil {
		abortWithError(ctx, err, "failed to build daily report")
		return
	}
	Success(ctx, report)
}
