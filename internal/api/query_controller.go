package api

import (
	"github.com/gin-gonic/gin"
	"github.com/guyuan9300-max/fleethub/internal/service"
	"github.com/guyuan9300-max/fleethub/internal/utils"
)

// QueryController 机器人、任务、错误查询控制器
type QueryController struct {
	queryService service.QueryService
}

// NewQueryController 创建查询控制器
func NewQueryController(queryService service.QueryService) *QueryController {
	return &QueryController{
		queryService: queryService,
	}
}

// DiagnosticsRequest 诊断包请求
type DiagnosticsRequest struct {
	RobotID     string  `json:"robot_id"`
	Fingerprint *string `json:"fingerprint"`
}

// robotID 读取并校验路径中的机器人 ID
func (c *QueryController) robotID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		abortWithError(ctx, err, "invalid robot ID")
		return "", false
	}
	return id, true
}

// ListRobots 机器人列表,按最后心跳倒序
// @Summary      机器人列表
// @Description  按最后心跳时间倒序
// @Tags         查询
// @Produce      json
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /api/robots [get]
func (c *QueryController) ListRobots(ctx *gin.Context) {
	robots, err := c.queryService.ListRobots(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err, "failed to list robots")
		return
	}
	Success(ctx, robots)
}

// GetRobot 机器人详情
// @Summary      机器人详情
// @Description  机器人记录和最近一次心跳
// @Tags         查询
// @Produce      json
// @Param        id path string true "机器人 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/robots/{id} [get]
func (c *QueryController) GetRobot(ctx *gin.Context) {
	id, ok := c.robotID(ctx)
	if !ok {
		return
	}

	detail, err := c.queryService.GetRobot(ctx.Request.Context(), id)
	if err != nil {
		abortWithError(ctx, err, "failed to get robot")
		return
	}
	Success(ctx, detail)
}

// ListRobotJobs 机器人最近的任务
// @Summary      机器人任务
// @Description  机器人最近的任务
// @Tags         查询
// @Produce      json
// @Param        id path string true "机器人 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/robots/{id}/jobs [get]
func (c *QueryController) ListRobotJobs(ctx *gin.Context) {
	id, ok := c.robotID(ctx)
	if !ok {
		return
	}

	jobs, err := c.queryService.ListRobotJobs(ctx.Request.Context(), id)
	if err != nil {
		abortWithError(ctx, err, "failed to list robot jobs")
		return
	}
	Success(ctx, jobs)
}

// ListRobotErrors 机器人最近的错误
// @Summary      机器人错误
// @Description  机器人最近的错误
// @Tags         查询
// @Produce      json
// @Param        id path string true "机器人 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/robots/{id}/errors [get]
func (c *QueryController) ListRobotErrors(ctx *gin.Context) {
	id, ok := c.robotID(ctx)
	if !ok {
		return
	}

	errs, err := c.queryService.ListRobotErrors(ctx.Request.Context(), id)
	if err != nil {
		abortWithError(ctx, err, "failed to list robot errors")
		return
	}
	Success(ctx, errs)
}

// ListJobs 任务列表,可按状态过滤
// @Summary      任务列表
// @Description  最近更新的任务,可按状态过滤
// @Tags         查询
// @Produce      json
// @Param        status query string false "任务状态,如 RUNNING、DONE"
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /api/jobs [get]
func (c *QueryController) ListJobs(ctx *gin.Context) {
	var status *string
	if s, ok := ctx.GetQuery("status"); ok && s != "" {
		status = &s
	}

	jobs, err := c.queryService.ListJobs(ctx.Request.Context(), status)
	if err != nil {
		abortWithError(ctx, err, "failed to list jobs")
		return
	}
	Success(ctx, jobs)
}

// Diagnostics 诊断包
// @Summary      诊断包
// @Description  机器人、最近心跳、任务、错误及相关分析
// @Tags         查询
// @Accept       json
// @Produce      json
// @Param        request body DiagnosticsRequest true "诊断请求"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/diagnostics/package [post]
func (c *QueryController) Diagnostics(ctx *gin.Context) {
	var req DiagnosticsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, invalidRequest(err), "invalid request")
		return
	}
	if err := utils.ValidateID(req.RobotID); err != nil {
		abortWithError(ctx, err, "invalid robot ID")
		return
	}

	pkg, err := c.queryService.DiagnosticsPackage(ctx.Request.Context(), req.RobotID, req.Fingerprint)
	if err != nil {
		abortWithError(ctx, err, "failed to build diagnostics package")
		return
	}
	Success(ctx, pkg)
}
