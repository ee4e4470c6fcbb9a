package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
)

var upgrader = gorillaWS.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 不做鉴权,允许任意来源
		return true
	},
}

// Handler WebSocket 处理器
// 升级连接后注册为 Hub 订阅者,接收所有领域事件
func Handler(hub *Hub, opts ClientOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade 已经写回了错误响应
			hub.logger.WithError(err).Debug("failed to upgrade websocket connection")
			return
		}

		client := NewClient(uuid.New().String(), hub, conn, opts)
		hub.Connect(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
