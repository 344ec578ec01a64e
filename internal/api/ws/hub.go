package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"paiban/internal/dto"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Hub 组织维度的 WebSocket 集线器
// 前端连接后只收推送（变更提示），不上行业务消息；收到提示后
// 自行重新拉取对应日期的排班视图
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{} // orgID → 连接集合
	logger  *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub 创建 Hub 实例
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		logger:  logger,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域控制已由 CORS 中间件承担
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleConnection 升级 HTTP 连接并纳入指定组织的连接集合，阻塞至连接关闭
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, orgID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.clients[orgID] == nil {
		h.clients[orgID] = make(map[*client]struct{})
	}
	h.clients[orgID][c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("WebSocket 连接建立", zap.String("organization_id", orgID))

	go h.writeLoop(c)
	h.readLoop(c)

	h.mu.Lock()
	if clients, ok := h.clients[orgID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, orgID)
		}
	}
	h.mu.Unlock()
	return nil
}

// BroadcastToOrg 向组织内全部连接推送变更提示
// 发送缓冲已满的慢连接直接断开，由前端重连恢复
func (h *Hub) BroadcastToOrg(orgID string, notice dto.ChangeNotice) {
	data, err := json.Marshal(notice)
	if err != nil {
		h.logger.Error("序列化变更提示失败", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[orgID] {
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(h.clients[orgID], c)
		}
	}
}

// readLoop 只消费控制帧与关闭事件，丢弃一切上行业务消息
func (h *Hub) readLoop(c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
