package container

import (
	"context"
	"fmt"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/database"
	"github.com/guyuan9300-max/fleethub/internal/event"
	"github.com/guyuan9300-max/fleethub/internal/kafka"
	"github.com/guyuan9300-max/fleethub/internal/metrics"
	"github.com/guyuan9300-max/fleethub/internal/relay"
	"github.com/guyuan9300-max/fleethub/internal/repository"
	"github.com/guyuan9300-max/fleethub/internal/service"
	"github.com/guyuan9300-max/fleethub/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库、事件广播、业务服务和后台任务
type Container struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB
	repos  *repository.Repositories

	hub         *websocket.Hub
	redisClient *redis.Client
	relay       *relay.RedisRelay
	consumer    *kafka.Consumer
	collector   *metrics.Collector

	ingestService     service.IngestService
	statisticsService service.StatisticsService
	anomalyService    service.AnomalyService
	queryService      service.QueryService
}

// NewContainer 创建依赖注入容器
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	// 数据库(带重试,3 次,初始间隔 1 秒,指数退避)
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return build(cfg, logger, db, service.SystemClock()), nil
}

// build 在已连接的数据库上组装其余依赖
func build(cfg *config.Config, logger *logrus.Logger, db *gorm.DB, clock service.Clock) *Container {
	c := &Container{
		cfg:    cfg,
		logger: logger,
		db:     db,
		repos:  repository.NewRepositories(db),
		hub:    websocket.NewHub(logger),
	}

	// 启用 Redis 时事件经频道转发给所有实例,否则直接在本地广播
	var publisher event.Publisher = c.hub
	if cfg.Redis.Enabled {
		c.redisClient = relay.NewClient(cfg.Redis)
		c.relay = relay.NewRedisRelay(c.redisClient, cfg.Redis.Channel, c.hub, logger)
		publisher = c.relay
	}

	thresholds := service.ThresholdsFromConfig(cfg.Fleet)
	c.ingestService = service.NewIngestService(c.repos, publisher, clock, logger)
	c.statisticsService = service.NewStatisticsService(c.repos, clock, thresholds)
	c.anomalyService = service.NewAnomalyService(c.repos, clock, thresholds)
	c.queryService = service.NewQueryService(c.repos)

	if cfg.Kafka.Enabled {
		c.consumer = kafka.NewConsumer(cfg.Kafka, c.ingestService, logger)
	}

	c.collector = metrics.NewCollector(db, c.fleetGauges, cfg.Metrics.CollectInterval, logger)

	return c
}

// fleetGauges 把机群概览转换为指标
func (c *Container) fleetGauges(ctx context.Context) (metrics.FleetGauges, error) {
	overview, err := c.statisticsService.FleetOverview(ctx)
	if err != nil {
		return metrics.FleetGauges{}, err
	}
	return metrics.FleetGauges{
		Total:          int(overview.TotalCount),
		Online:         int(overview.OnlineCount),
		Error:          int(overview.ErrorCount),
		Running:        int(overview.RunningCount),
		Stuck:          int(overview.StuckJobsCount),
		AvgUtilization: overview.AvgUtilizationToday,
	}, nil
}

// 后台任务异常退出后的重启间隔,按指数退避
var (
	workerRestartInitial = time.Second
	workerRestartMax     = 30 * time.Second
)

// StartWorkers 启动后台任务:指标采集、Kafka 消费、Redis 转发
// Kafka 消费者和 Redis 转发异常退出后会被重启,ctx 取消后退出
func (c *Container) StartWorkers(ctx context.Context) {
	c.collector.Start()

	if c.consumer != nil {
		go supervise(ctx, c.logger, "kafka consumer", c.consumer.Run)
	}

	if c.relay != nil {
		go supervise(ctx, c.logger, "redis relay", c.relay.Run)
	}
}

// supervise 运行 run,退出后按指数退避重启,直到 ctx 取消
// 一次运行超过 workerRestartMax 后退避时间重置
func supervise(ctx context.Context, logger *logrus.Logger, name string, run func(context.Context) error) {
	backoff := workerRestartInitial
	for {
		started := time.Now()
		err := run(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(started) > workerRestartMax {
			backoff = workerRestartInitial
		}
		logger.WithError(err).WithFields(logrus.Fields{
			"worker":  name,
			"restart": backoff.String(),
		}).Error("background worker exited")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > workerRestartMax {
			backoff = workerRestartMax
		}
	}
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Logger 获取日志记录器
func (c *Container) Logger() *logrus.Logger {
	return c.logger
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Hub 获取事件广播器
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// RedisClient 获取 Redis 客户端,未启用时为 nil
func (c *Container) RedisClient() *redis.Client {
	return c.redisClient
}

// IngestService 获取上报归一化服务
func (c *Container) IngestService() service.IngestService {
	return c.ingestService
}

// StatisticsService 获取机群统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statisticsService
}

// AnomalyService 获取异常检测服务
func (c *Container) AnomalyService() service.AnomalyService {
	return c.anomalyService
}

// QueryService 获取查询服务
func (c *Container) QueryService() service.QueryService {
	return c.queryService
}

// Close 关闭容器,清理资源
// 调用前应先取消传给 StartWorkers 的 ctx
func (c *Container) Close() error {
	c.collector.Stop()
	c.hub.Close()

	if c.consumer != nil {
		if err := c.consumer.Close(); err != nil {
			c.logger.WithError(err).Warn("failed to close kafka consumer")
		}
	}
	if c.relay != nil {
		if err := c.relay.Close(); err != nil {
			c.logger.WithError(err).Warn("failed to close redis client")
		}
	}

	return database.Close(c.db)
}
