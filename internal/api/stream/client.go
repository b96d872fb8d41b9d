package stream

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 65536
	clientSendBufSize = 256
)

// originChecker проверяет Origin против ALLOWED_ORIGINS (comma-separated);
// пусто или "*" разрешает все origins — удобно для локального развёртывания.
type originChecker struct {
	allowed  map[string]struct{}
	allowAll bool
}

var checker = newOriginChecker()

func newOriginChecker() *originChecker {
	c := &originChecker{allowed: make(map[string]struct{})}
	env := os.Getenv("ALLOWED_ORIGINS")
	if env == "" || env == "*" {
		c.allowAll = true
		return c
	}
	for _, origin := range strings.Split(env, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			c.allowed[origin] = struct{}{}
		}
	}
	return c
}

func (c *originChecker) Check(origin string) bool {
	if origin == "" || c.allowAll {
		return true
	}
	_, ok := c.allowed[origin]
	return ok
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return checker.Check(r.Header.Get("Origin"))
	},
}

// Client представляет одно WebSocket соединение, зарегистрированное в
// Hub. Соединение только на чтение команд keepalive — канал используется
// исключительно для push-уведомлений сервера оператору.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	send chan []byte
	log  *zap.Logger
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
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
				c.log.Debug("websocket read error", zap.Error(err))
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// ServeWS апгрейдит HTTP до WebSocket, регистрирует клиента в hub и
// запускает его read/write горутины.
func ServeWS(hub *Hub, log *zap.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{conn: conn, hub: hub, send: make(chan []byte, clientSendBufSize), log: log}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
