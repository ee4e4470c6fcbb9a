package api

import (
	"github.com/gin-gonic/gin"
	"github.com/guyuan9300-max/fleethub/internal/metrics"
	"github.com/guyuan9300-max/fleethub/internal/service"
)

// IngestController 上报控制器
type IngestController struct {
	ingestService service.IngestService
}

// NewIngestController 创建上报控制器
func NewIngestController(ingestService service.IngestService) *IngestController {
	return &IngestController{
		ingestService: ingestService,
	}
}

// Health 心跳上报
// @Summary      上报机器人心跳
// @Description  写入心跳记录并更新机器人状态和健康分
// @Tags         上报
// @Accept       json
// @Produce      json
// @Param        request body service.HealthReportInput true "心跳内容"
// @Success      200  {object}  AckResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/ingest/health [post]
func (c *IngestController) Health(ctx *gin.Context) {
	var in service.HealthReportInput
	if !bindIngest(ctx, "health", &in) {
		return
	}
	_, err := c.ingestService.IngestHealth(ctx.Request.Context(), &in)
	c.respond(ctx, "health", err)
}

// Job 任务上报
// @Summary      上报任务状态
// @Description  按 job_id 整条替换任务记录
// @Tags         上报
// @Accept       json
// @Produce      json
// @Param        request body service.JobInput true "任务内容"
// @Success      200  {object}  AckResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/ingest/job [post]
func (c *IngestController) Job(ctx *gin.Context) {
	var in service.JobInput
	if !bindIngest(ctx, "job", &in) {
		return
	}
	_, err := c.ingestService.IngestJob(ctx.Request.Context(), &in)
	c.respond(ctx, "job", err)
}

// Error 错误上报
// @Summary      上报错误事件
// @Description  追加一条错误记录
// @Tags         上报
// @Accept       json
// @Produce      json
// @Param        request body service.ErrorInput true "错误内容"
// @Success      200  {object}  AckResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/ingest/error [post]
func (c *IngestController) Error(ctx *gin.Context) {
	var in service.ErrorInput
	if !bindIngest(ctx, "error", &in) {
		return
	}
	_, err := c.ingestService.IngestError(ctx.Request.Context(), &in)
	c.respond(ctx, "error", err)
}

// Analyze 记录错误分析
// @Summary      记录错误分析
// @Description  追加一条人工或 AI 的错误分析
// @Tags         上报
// @Accept       json
// @Produce      json
// @Param        request body service.AnalysisInput true "分析内容"
// @Success      200  {object}  AckResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/ai/analyze [post]
func (c *IngestController) Analyze(ctx *gin.Context) {
	var in service.AnalysisInput
	if !bindIngest(ctx, "analysis", &in) {
		return
	}
	_, err := c.ingestService.RecordAnalysis(ctx.Request.Context(), &in)
	c.respond(ctx, "analysis", err)
}

func (c *IngestController) respond(ctx *gin.Context, kind string, err error) {
	metrics.RecordIngest(kind, metrics.SourceHTTP, err)
	if err != nil {
		abortWithError(ctx, err, "failed to ingest "+kind)
		return
	}
	Ack(ctx)
}

// bindIngest 解析请求体,失败时记录指标并返回 400
func bindIngest(ctx *gin.Context, kind string, in interface{}) bool {
	if err := ctx.ShouldBindJSON(in); err != nil {
		metrics.RecordIngest(kind, metrics.SourceHTTP, err)
		abortWithError(ctx, invalidRequest(err), "invalid request")
		return false
	}
	return true
}
