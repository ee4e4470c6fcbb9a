package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Env       string          `mapstructure:"env" yaml:"env"` // 环境: development, production
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	CORS      CORSConfig      `mapstructure:"cors" yaml:"cors"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Ingest    IngestConfig    `mapstructure:"ingest" yaml:"ingest"`
	Fleet     FleetConfig     `mapstructure:"fleet" yaml:"fleet"`
	WebSocket WebSocketConfig `mapstructure:"websocket" yaml:"websocket"`
	Kafka     KafkaConfig     `mapstructure:"kafka" yaml:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" yaml:"driver"` // postgres, sqlite
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	User            string `mapstructure:"user" yaml:"user"`
	Password        string `mapstructure:"password" yaml:"password"`
	DBName          string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode         string `mapstructure:"sslmode" yaml:"sslmode"`
	Path            string `mapstructure:"path" yaml:"path"` // sqlite 文件路径
	MaxIdleConns    int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`   // 秒
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time" yaml:"conn_max_idle_time"` // 秒
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age" yaml:"max_age"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // 日志级别: debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // 日志格式: json, text
	Output string `mapstructure:"output" yaml:"output"` // 输出位置: stdout, file, both
	Dir    string `mapstructure:"dir" yaml:"dir"`       // 文件输出目录
}

// IngestConfig 上报接口配置
type IngestConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"` // 0 表示不限流
	RateLimitBurst int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
}

// FleetConfig 机群判定阈值
type FleetConfig struct {
	OfflineAfter        time.Duration `mapstructure:"offline_after" yaml:"offline_after"`
	StuckAfter          time.Duration `mapstructure:"stuck_after" yaml:"stuck_after"`
	ErrorBurstWindow    time.Duration `mapstructure:"error_burst_window" yaml:"error_burst_window"`
	ErrorBurstThreshold int           `mapstructure:"error_burst_threshold" yaml:"error_burst_threshold"`
}

// WebSocketConfig 实时推送配置
type WebSocketConfig struct {
	SendBuffer int           `mapstructure:"send_buffer" yaml:"send_buffer"`
	WriteWait  time.Duration `mapstructure:"write_wait" yaml:"write_wait"`
}

// KafkaConfig Kafka 上报通道配置
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	GroupID string   `mapstructure:"group_id" yaml:"group_id"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
}

// RedisConfig 多实例事件转发配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Channel  string `mapstructure:"channel" yaml:"channel"`
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint"` // OTLP HTTP 地址, 如 localhost:4318
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// MetricsConfig 指标采集配置
type MetricsConfig struct {
	CollectInterval time.Duration `mapstructure:"collect_interval" yaml:"collect_interval"`
}

// Load 加载配置,支持配置文件和环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果提供了配置文件路径,从文件加载
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		// 尝试从默认位置加载
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.fleethub")
		// 忽略配置文件不存在的错误,使用默认值
		_ = v.ReadInConfig()
	}

	// 支持环境变量
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// IsProduction 判断是否为生产环境
func IsProduction(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.Env == "production"
}

// Default 返回默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 环境变量
	env := v.GetString("env")
	if env == "" {
		env = os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
		}
	}
	v.SetDefault("env", env)

	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// 数据库默认配置
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "fleethub")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "fleethub.db")

	// 数据库连接池配置（根据环境设置默认值）
	if env == "production" {
		v.SetDefault("database.max_idle_conns", 20)
		v.SetDefault("database.max_open_conns", 200)
		v.SetDefault("database.conn_max_lifetime", 3600) // 1 小时
		v.SetDefault("database.conn_max_idle_time", 300) // 5 分钟
	} else {
		v.SetDefault("database.max_idle_conns", 10)
		v.SetDefault("database.max_open_conns", 100)
		v.SetDefault("database.conn_max_lifetime", 3600) // 1 小时
		v.SetDefault("database.conn_max_idle_time", 600) // 10 分钟
	}

	// CORS 默认配置
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-Request-ID"})
	v.SetDefault("cors.max_age", 86400)

	// 日志配置（根据环境设置默认值）
	if env == "production" {
		v.SetDefault("log.level", "warn")
		v.SetDefault("log.format", "json")
	} else {
		v.SetDefault("log.level", "debug")
		v.SetDefault("log.format", "text")
	}
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.dir", "logs")

	// 上报限流
	v.SetDefault("ingest.rate_limit_rps", 200)
	v.SetDefault("ingest.rate_limit_burst", 400)

	// 机群阈值
	v.SetDefault("fleet.offline_after", 10*time.Minute)
	v.SetDefault("fleet.stuck_after", 15*time.Minute)
	v.SetDefault("fleet.error_burst_window", 60*time.Minute)
	v.SetDefault("fleet.error_burst_threshold", 3)

	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("websocket.write_wait", 10*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "fleethub")
	v.SetDefault("kafka.topic", "fleet.telemetry")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "fleethub:events")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "fleethub")

	v.SetDefault("metrics.collect_interval", 30*time.Second)
}
