package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 超出响应时间预算的请求数
	slowRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_slow_requests_total",
			Help: "Total number of API requests exceeding their latency budget",
		},
		[]string{"operation"},
	)

	// 上报事件数
	ingestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_ingested_total",
			Help: "Total number of ingested telemetry records",
		},
		[]string{"kind", "source"}, // kind: health, job, error, analysis; source: http, kafka
	)

	// 上报失败数
	ingestFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_ingest_failures_total",
			Help: "Total number of failed telemetry ingestions",
		},
		[]string{"kind", "source"},
	)

	// 广播投递数
	broadcastDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleet_broadcast_delivered_total",
			Help: "Total number of domain events delivered to subscribers",
		},
	)

	// 投递失败被移除的订阅者数
	broadcastPrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleet_broadcast_pruned_total",
			Help: "Total number of subscribers pruned after a failed delivery",
		},
	)

	subscribersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleet_subscribers_active",
			Help: "Number of connected live subscribers",
		},
	)

	// 机群状态
	fleetRobots = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleet_robots",
			Help: "Number of robots by state",
		},
		[]string{"state"}, // total, online, error, running
	)

	fleetStuckJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleet_stuck_jobs",
			Help: "Number of RUNNING jobs without a recent update",
		},
	)

	fleetUtilization = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleet_avg_utilization_today",
			Help: "Average robot utilization for the current UTC day",
		},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)
)

var (
	once sync.Once
)

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(slowRequestsTotal)
	prometheus.MustRegister(ingestedTotal)
	prometheus.MustRegister(ingestFailuresTotal)
	prometheus.MustRegister(broadcastDeliveredTotal)
	prometheus.MustRegister(broadcastPrunedTotal)
	prometheus.MustRegister(subscribersActive)
	prometheus.MustRegister(fleetRobots)
	prometheus.MustRegister(fleetStuckJobs)
	prometheus.MustRegister(fleetUtilization)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)

	// 注册 Go 运行时指标（只注册一次）
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordSlowRequest 记录一次超出预算的请求
func RecordSlowRequest(operation string) {
	slowRequestsTotal.WithLabelValues(operation).Inc()
}

// 上报来源
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// RecordIngest 记录一次上报结果
func RecordIngest(kind, source string, err error) {
	if err != nil {
		ingestFailuresTotal.WithLabelValues(kind, source).Inc()
		return
	}
	ingestedTotal.WithLabelValues(kind, source).Inc()
}

// RecordBroadcast 记录一次广播的投递结果
func RecordBroadcast(delivered, pruned int) {
	broadcastDeliveredTotal.Add(float64(delivered))
	broadcastPrunedTotal.Add(float64(pruned))
}

// SetSubscribers 更新在线订阅者数
func SetSubscribers(n int) {
	subscribersActive.Set(float64(n))
}

// FleetGauges 机群状态快照
type FleetGauges struct {
	Total          int
	Online         int
	Error          int
	Running        int
	Stuck          int
	AvgUtilization float64
}

// UpdateFleet 更新机群状态指标
func UpdateFleet(g FleetGauges) {
	fleetRobots.WithLabelValues("total").Set(float64(g.Total))
	fleetRobots.WithLabelValues("online").Set(float64(g.Online))
	fleetRobots.WithLabelValues("error").Set(float64(g.Error))
	fleetRobots.WithLabelValues("running").Set(float64(g.Running))
	fleetStuckJobs.Set(float64(g.Stuck))
	fleetUtilization.Set(g.AvgUtilization)
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}
