package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guyuan9300-max/fleethub/internal/websocket"
)

const (
	sseSendBuffer     = 256
	sseHeartbeatEvery = 30 * time.Second
)

// SSEHandler SSE 处理器
// 不支持 WebSocket 的观察端通过它接收同一份领域事件流
func SSEHandler(hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			Error(c, http.StatusInternalServerError, "streaming not supported", "")
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no") // 禁用 Nginx 缓冲
		c.Status(http.StatusOK)

		sub := websocket.NewMailbox("sse-"+uuid.New().String(), sseSendBuffer)
		hub.Connect(sub)
		defer hub.Disconnect(sub)

		if _, err := fmt.Fprintf(c.Writer, ": connected %s\n\n", sub.ID()); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(sseHeartbeatEvery)
		defer ticker.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				return
			case <-sub.Done():
				return
			case <-ticker.C:
				// 注释行作为心跳,保持代理连接
				if _, err := io.WriteString(c.Writer, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case message := <-sub.Messages():
				if err := sendSSEMessage(c.Writer, message); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// sendSSEMessage 发送 SSE 消息,格式为 data: <json>\n\n
func sendSSEMessage(w io.Writer, data []byte) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
