// Package kafka 从 Kafka 主题消费机器人上报,交给归一化服务处理
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/metrics"
	"github.com/guyuan9300-max/fleethub/internal/service"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// 消息类型
const (
	KindHealth   = "health"
	KindJob      = "job"
	KindError    = "error"
	KindAnalysis = "analysis"
)

// ErrUnknownKind 无法识别的消息类型
var ErrUnknownKind = errors.New("unknown message type")

// Envelope 主题消息格式,payload 与 HTTP 上报请求体相同
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// messageReader kafka.Reader 中消费者用到的部分
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer 上报消费者
type Consumer struct {
	reader messageReader
	ingest service.IngestService
	logger *logrus.Logger
}

// NewConsumer 根据配置创建消费者
func NewConsumer(cfg config.KafkaConfig, ingest service.IngestService, logger *logrus.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, ingest, logger)
}

func newConsumer(reader messageReader, ingest service.IngestService, logger *logrus.Logger) *Consumer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Consumer{
		reader: reader,
		ingest: ingest,
		logger: logger,
	}
}

// Run 循环拉取消息直到 ctx 取消
// 处理失败的消息记录日志后照常提交,不重试;拉取失败时返回错误,由调用方退避后重新运行
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("kafka consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("kafka consumer stopped")
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := c.Dispatch(ctx, msg.Value); err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"topic":     msg.Topic,
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).Warn("failed to process telemetry message")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.WithError(err).WithField("offset", msg.Offset).Error("failed to commit message")
		}
	}
}

// Dispatch 解析一条消息并交给对应的归一化操作
func (c *Consumer) Dispatch(ctx context.Context, value []byte) error {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		metrics.RecordIngest("unknown", metrics.SourceKafka, err)
		return fmt.Errorf("%w: %v", service.ErrInvalidPayload, err)
	}

	err := c.dispatch(ctx, &env)
	kind := env.Type
	if errors.Is(err, ErrUnknownKind) {
		kind = "unknown"
	}
	metrics.RecordIngest(kind, metrics.SourceKafka, err)
	return err
}

func (c *Consumer) dispatch(ctx context.Context, env *Envelope) error {
	switch env.Type {
	case KindHealth:
		var in service.HealthReportInput
		if err := decodePayload(env.Payload, &in); err != nil {
			return err
		}
		_, err := c.ingest.IngestHealth(ctx, &in)
		return err
	case KindJob:
		var in service.JobInput
		if err := decodePayload(env.Payload, &in); err != nil {
			return err
		}
		_, err := c.ingest.IngestJob(ctx, &in)
		return err
	case KindError:
		var in service.ErrorInput
		if err := decodePayload(env.Payload, &in); err != nil {
			return err
		}
		_, err := c.ingest.IngestError(ctx, &in)
		return err
	case KindAnalysis:
		var in service.AnalysisInput
		if err := decodePayload(env.Payload, &in); err != nil {
			return err
		}
		_, err := c.ingest.RecordAnalysis(ctx, &in)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", service.ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidPayload, err)
	}
	return nil
}

// Close 关闭 reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
