package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guyuan9300-max/fleethub/internal/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthController 健康检查控制器
type HealthController struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthController 创建健康检查控制器,redis 未启用时传 nil
func NewHealthController(db *gorm.DB, redisClient *redis.Client) *HealthController {
	return &HealthController{
		db:    db,
		redis: redisClient,
	}
}

// Check 健康检查
// @Summary      健康检查
// @Description  数据库不可用时返回 503,Redis 不可用只标记为 degraded
// @Tags         健康检查
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	if c.db != nil {
		if err := database.CheckHealth(ctx.Request.Context(), c.db); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		status = "unhealthy"
		checks["database"] = "not configured"
	}

	// Redis 只影响多实例转发,不可用时降级为本地广播
	if c.redis != nil {
		if err := c.checkRedis(ctx.Request.Context()); err != nil {
			checks["redis"] = "degraded: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

func (c *HealthController) checkRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}
