package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// 写超时时间
	defaultWriteWait = 10 * time.Second

	// 读超时时间
	pongWait = 60 * time.Second

	// ping 周期 (必须小于 pongWait)
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小,观察者只会发送控制帧
	maxMessageSize = 4 * 1024

	defaultSendBuffer = 256
)

// ClientOptions 客户端参数
type ClientOptions struct {
	SendBuffer int
	WriteWait  time.Duration
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.WriteWait <= 0 {
		o.WriteWait = defaultWriteWait
	}
	return o
}

// Client WebSocket 订阅者,投递由内嵌的 Mailbox 完成
type Client struct {
	*Mailbox

	hub  *Hub
	conn *websocket.Conn
	opts ClientOptions

	logger *logrus.Logger
}

// NewClient 创建新的客户端
func NewClient(id string, hub *Hub, conn *websocket.Conn, opts ClientOptions) *Client {
	opts = opts.withDefaults()
	return &Client{
		Mailbox: NewMailbox(id, opts.SendBuffer),
		hub:     hub,
		conn:    conn,
		opts:    opts,
		logger:  hub.logger,
	}
}

// ReadPump 从 WebSocket 连接读取消息
// 观察者发送的内容会被忽略,读失败即视为断开
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).WithField("subscriber_id", c.ID()).Debug("websocket read error")
			}
			return
		}
	}
}

// WritePump 向 WebSocket 连接写入消息,每个事件一帧
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.Disconnect(c)
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.Messages():
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.Done():
			// Hub 关闭了订阅者
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
