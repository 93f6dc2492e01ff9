package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Типы событий, рассылаемых клиентам
const (
	EventQuizChanged     = "quiz:changed"
	EventExportCompleted = "export:completed"
)

// Event — событие, рассылаемое подключенным клиентам
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	SentAt  time.Time   `json:"sent_at"`
}

// Hub держит активные WebSocket-соединения и рассылает им события.
// Все операции с картой клиентов идут через единственную горутину Run.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// done закрывается при остановке Run: пампы клиентов не должны
	// блокироваться на register/unregister после выключения hub
	done chan struct{}
}

// NewHub создает новый hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run обслуживает hub до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			close(h.done)
			return
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("[WS] Клиент %d подключен, всего: %d", client.userID, len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				client.close()
				delete(h.clients, client)
				log.Printf("[WS] Клиент %d отключен, всего: %d", client.userID, len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Медленный клиент отключается, чтобы не копить буфер
					client.close()
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast сериализует событие и рассылает его всем клиентам.
// Ошибки сериализации логируются и не прерывают вызывающего.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	event := Event{Type: eventType, Payload: payload, SentAt: time.Now().UTC()}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS] Ошибка сериализации события %s: %v", eventType, err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("[WS] Канал рассылки переполнен, событие %s пропущено", eventType)
	}
}
