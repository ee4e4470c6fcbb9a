package websocket

import "sync"

// Mailbox 带缓冲的订阅者收件箱
// Deliver 只入队不阻塞,队列满或已关闭时返回错误,由具体传输层负责取出并写出
type Mailbox struct {
	id        string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewMailbox 创建收件箱,size <= 0 时使用默认缓冲大小
func NewMailbox(id string, size int) *Mailbox {
	if size <= 0 {
		size = defaultSendBuffer
	}
	return &Mailbox{
		id:   id,
		send: make(chan []byte, size),
		done: make(chan struct{}),
	}
}

// ID 实现 Subscriber
func (m *Mailbox) ID() string {
	return m.id
}

// Deliver 实现 Subscriber
func (m *Mailbox) Deliver(message []byte) error {
	select {
	case <-m.done:
		return ErrSubscriberClosed
	default:
	}

	select {
	case m.send <- message:
		return nil
	case <-m.done:
		return ErrSubscriberClosed
	default:
		return ErrSendBufferFull
	}
}

// Close 实现 Subscriber,可重复调用
func (m *Mailbox) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

// Messages 待写出的消息
func (m *Mailbox) Messages() <-chan []byte {
	return m.send
}

// Done 关闭后可读
func (m *Mailbox) Done() <-chan struct{} {
	return m.done
}
