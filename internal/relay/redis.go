// Package relay 通过 Redis 频道在多个实例之间转发领域事件
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/event"
	"github.com/guyuan9300-max/fleethub/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 2 * time.Second

// Broadcaster 本地广播器
type Broadcaster interface {
	BroadcastRaw(data []byte) websocket.BroadcastResult
}

// RedisRelay 把领域事件发布到 Redis 频道,并把频道中收到的事件广播给本实例的订阅者
// 发布失败或频道没有任何接收方(包括本实例的订阅尚未建立)时直接在本地广播
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   Broadcaster
	logger  *logrus.Logger
}

// NewClient 根据配置创建 Redis 客户端
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisRelay 创建事件转发器
func NewRedisRelay(client *redis.Client, channel string, local Broadcaster, logger *logrus.Logger) *RedisRelay {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		local:   local,
		logger:  logger,
	}
}

// Publish 实现 event.Publisher
func (r *RedisRelay) Publish(ev event.DomainEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.logger.WithError(err).WithField("event_type", ev.EventType()).Error("failed to marshal domain event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	receivers, err := r.client.Publish(ctx, r.channel, data).Result()
	switch {
	case err != nil:
		r.logger.WithError(err).WithField("channel", r.channel).Warn("redis publish failed, broadcasting locally")
		r.local.BroadcastRaw(data)
	case receivers == 0:
		r.logger.WithField("channel", r.channel).Debug("no relay subscribers, broadcasting locally")
		r.local.BroadcastRaw(data)
	}
}

// Run 订阅频道并把收到的事件广播给本地订阅者,ctx 取消时返回
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// 等待订阅确认
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.WithField("channel", r.channel).Info("redis relay subscribed")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.deliver(msg.Payload)
		}
	}
}

// deliver 转发一条频道消息
func (r *RedisRelay) deliver(payload string) {
	if !json.Valid([]byte(payload)) {
		r.logger.WithField("channel", r.channel).Warn("dropping malformed relay message")
		return
	}
	r.local.BroadcastRaw([]byte(payload))
}

// Close 关闭 Redis 连接
func (r *RedisRelay) Close() error {
	return r.client.Close()
}
