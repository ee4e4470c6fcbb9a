package websocket

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/guyuan9300-max/fleethub/internal/event"
	"github.com/guyuan9300-max/fleethub/internal/metrics"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSubscriberClosed 订阅者已关闭
	ErrSubscriberClosed = errors.New("subscriber closed")
	// ErrSendBufferFull 订阅者发送缓冲区已满
	ErrSendBufferFull = errors.New("subscriber send buffer full")
)

// Subscriber 实时事件订阅者
// Deliver 不能无限期阻塞,失败的订阅者会被 Hub 移除并关闭
type Subscriber interface {
	ID() string
	Deliver(message []byte) error
	Close()
}

// DeliveryResult 单个订阅者的投递结果
type DeliveryResult struct {
	SubscriberID string
	Err          error
}

// BroadcastResult 一次广播的投递结果
type BroadcastResult struct {
	Deliveries []DeliveryResult
}

// Delivered 投递成功的订阅者数量
func (r BroadcastResult) Delivered() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Pruned 因投递失败被移除的订阅者 ID
func (r BroadcastResult) Pruned() []string {
	var ids []string
	for _, d := range r.Deliveries {
		if d.Err != nil {
			ids = append(ids, d.SubscriberID)
		}
	}
	return ids
}

// Hub 管理所有实时订阅者并广播领域事件
// 订阅者集合由一把互斥锁保护;广播时在锁内取快照,在锁外投递
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]Subscriber
	closed      bool

	logger *logrus.Logger
}

// NewHub 创建新的 Hub
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		subscribers: make(map[string]Subscriber),
		logger:      logger,
	}
}

// Connect 注册订阅者
func (h *Hub) Connect(s Subscriber) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.Close()
		return
	}
	h.subscribers[s.ID()] = s
	count := len(h.subscribers)
	h.mu.Unlock()

	metrics.SetSubscribers(count)
	h.logger.WithField("subscriber_id", s.ID()).Debug("subscriber connected")
}

// Disconnect 移除订阅者并关闭它,重复调用是安全的
func (h *Hub) Disconnect(s Subscriber) {
	if !h.remove(s) {
		return
	}
	s.Close()
	h.logger.WithField("subscriber_id", s.ID()).Debug("subscriber disconnected")
}

// remove 仅当集合中登记的是同一个实例时才删除
func (h *Hub) remove(s Subscriber) bool {
	h.mu.Lock()
	current, ok := h.subscribers[s.ID()]
	if !ok || current != s {
		h.mu.Unlock()
		return false
	}
	delete(h.subscribers, s.ID())
	count := len(h.subscribers)
	h.mu.Unlock()

	metrics.SetSubscribers(count)
	return true
}

// Publish 实现 event.Publisher
func (h *Hub) Publish(ev event.DomainEvent) {
	h.Broadcast(ev)
}

// Broadcast 序列化一次事件并投递给当前所有订阅者
func (h *Hub) Broadcast(ev event.DomainEvent) BroadcastResult {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.WithError(err).WithField("event_type", ev.EventType()).Error("failed to marshal domain event")
		return BroadcastResult{}
	}
	return h.BroadcastRaw(data)
}

// BroadcastRaw 投递已序列化的事件
func (h *Hub) BroadcastRaw(data []byte) BroadcastResult {
	h.mu.Lock()
	snapshot := make([]Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		snapshot = append(snapshot, s)
	}
	h.mu.Unlock()

	result := BroadcastResult{Deliveries: make([]DeliveryResult, 0, len(snapshot))}
	for _, s := range snapshot {
		err := s.Deliver(data)
		result.Deliveries = append(result.Deliveries, DeliveryResult{SubscriberID: s.ID(), Err: err})
		if err != nil {
			h.logger.WithError(err).WithField("subscriber_id", s.ID()).Warn("pruning subscriber after failed delivery")
			h.Disconnect(s)
		}
	}

	metrics.RecordBroadcast(result.Delivered(), len(result.Deliveries)-result.Delivered())
	return result
}

// HasSubscriber 检查订阅者是否存在
func (h *Hub) HasSubscriber(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.subscribers[id]
	return ok
}

// SubscriberCount 获取订阅者数量
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close 关闭所有订阅者,之后的 Connect 会直接关闭新订阅者
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	snapshot := make([]Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		snapshot = append(snapshot, s)
	}
	h.subscribers = make(map[string]Subscriber)
	h.mu.Unlock()

	for _, s := range snapshot {
		s.Close()
	}
	metrics.SetSubscribers(0)
}
