// Package stream пушит operator-facing события в реальном времени —
// новые DealAlert и прогресс циклов движка обнаружения — через
// WebSocket, вместо периодического опроса HTTP-surface.
package stream

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/models"
)

var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// MessageType различает форму payload'а в Data.
type MessageType string

const (
	MessageTypeDealAlert         MessageType = "deal_alert"
	MessageTypeDiscoveryProgress MessageType = "discovery_progress"
	MessageTypeItemStatus        MessageType = "item_status"
)

// BaseMessage — общий конверт для всех сообщений канала.
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Hub управляет всеми активными WebSocket соединениями и рассылает им
// сообщения без блокировки на медленных клиентах.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run запускает главный цикл Hub — должен выполняться в отдельной
// горутине: go hub.Run().
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
			}
		}
	}
}

func (h *Hub) broadcastTyped(msgType MessageType, data interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer jsonBufferPool.Put(buf)

	msg := BaseMessage{Type: msgType, Timestamp: time.Now(), Data: data}
	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		h.log.Warn("failed to encode broadcast message", zap.Error(err))
		return
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	h.broadcast <- out
}

// BroadcastDealAlert уведомляет подключенных операторов о новой найденной
// сделке.
func (h *Hub) BroadcastDealAlert(deal *models.DealAlert) {
	h.broadcastTyped(MessageTypeDealAlert, deal)
}

// BroadcastDiscoveryProgress отправляет промежуточный статус текущего
// цикла движка обнаружения.
func (h *Hub) BroadcastDiscoveryProgress(log *models.DiscoveryLog) {
	h.broadcastTyped(MessageTypeDiscoveryProgress, log)
}

// BroadcastItemStatus уведомляет об изменении статуса отслеживаемого лота
// (используется reconcile.Notifier-реализацией, см. internal/notifier).
func (h *Hub) BroadcastItemStatus(item *models.MonitoredItem) {
	h.broadcastTyped(MessageTypeItemStatus, item)
}

// ClientCount возвращает число подключенных клиентов.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
