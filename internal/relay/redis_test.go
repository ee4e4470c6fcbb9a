package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/guyuan9300-max/fleethub/internal/event"
	"github.com/guyuan9300-max/fleethub/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSubscriber struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureSubscriber) ID() string { return "capture" }

func (c *captureSubscriber) Deliver(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, string(message))
	return nil
}

func (c *captureSubscriber) Close() {}

func (c *captureSubscriber) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// TestRedisRelay_FallbackToLocal 测试 Redis 不可用时在本地广播
func TestRedisRelay_FallbackToLocal(t *testing.T) {
	hub := websocket.NewHub(quietLogger())
	sub := &captureSubscriber{}
	hub.Connect(sub)

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	relay := NewRedisRelay(client, "fleethub:test", hub, quietLogger())
	defer relay.Close()

	relay.Publish(event.NewAnalysisCreated(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), nil, nil))

	messages := sub.received()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], `"analysis.created"`)
}

// TestRedisRelay_Deliver 测试频道消息转发和非法消息丢弃
func TestRedisRelay_Deliver(t *testing.T) {
	hub := websocket.NewHub(quietLogger())
	sub := &captureSubscriber{}
	hub.Connect(sub)

	relay := NewRedisRelay(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "fleethub:test", hub, quietLogger())
	defer relay.Close()

	relay.deliver(`{"type":"job.updated","job_id":"j1"}`)
	relay.deliver(`not json`)

	messages := sub.received()
	require.Len(t, messages, 1)
	assert.JSONEq(t, `{"type":"job.updated","job_id":"j1"}`, messages[0])
}

// TestRedisRelay_NoReceiversBroadcastsLocally 测试频道没有接收方时在本地广播
func TestRedisRelay_NoReceiversBroadcastsLocally(t *testing.T) {
	mr := miniredis.RunT(t)

	hub := websocket.NewHub(quietLogger())
	sub := &captureSubscriber{}
	hub.Connect(sub)

	relay := NewRedisRelay(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "fleethub:test", hub, quietLogger())
	defer relay.Close()

	relay.Publish(event.NewAnalysisCreated(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), nil, nil))

	messages := sub.received()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], `"analysis.created"`)
}

// TestRedisRelay_RunDeliversOnce 测试订阅建立后事件只经频道送达一次
func TestRedisRelay_RunDeliversOnce(t *testing.T) {
	mr := miniredis.RunT(t)

	hub := websocket.NewHub(quietLogger())
	sub := &captureSubscriber{}
	hub.Connect(sub)

	relay := NewRedisRelay(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "fleethub:test", hub, quietLogger())
	defer relay.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("fleethub:test")["fleethub:test"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	relay.Publish(event.NewAnalysisCreated(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), nil, nil))
	require.Eventually(t, func() bool { return len(sub.received()) == 1 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, sub.received(), 1)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}

// TestRedisRelay_RunSubscribeError 测试 Redis 不可达时 Run 返回错误
func TestRedisRelay_RunSubscribeError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	relay := NewRedisRelay(client, "fleethub:test", websocket.NewHub(quietLogger()), quietLogger())
	defer relay.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, relay.Run(ctx))
}
