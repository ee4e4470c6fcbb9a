package metrics

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FleetSource 返回当前机群状态
type FleetSource func(ctx context.Context) (FleetGauges, error)

// Collector 定期刷新数据库连接和机群状态指标
type Collector struct {
	db       *gorm.DB
	fleet    FleetSource
	interval time.Duration
	logger   *logrus.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, fleet FleetSource, interval time.Duration, logger *logrus.Logger) *Collector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		fleet:    fleet,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	c.started = true
	go c.collect()
}

// Stop 停止指标收集器,未启动时直接返回
func (c *Collector) Stop() {
	c.cancel()
	if c.started {
		<-c.done
	}
}

// CollectOnce 立即采集一次
func (c *Collector) CollectOnce(ctx context.Context) {
	_ = UpdateDatabaseConnections(c.db)

	if c.fleet == nil {
		return
	}
	g, err := c.fleet(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("failed to collect fleet metrics")
		return
	}
	UpdateFleet(g)
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	c.CollectOnce(c.ctx)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.CollectOnce(c.ctx)
		}
	}
}
