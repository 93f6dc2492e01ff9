package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yourusername/quizmaster-api/internal/ws"
	"github.com/yourusername/quizmaster-api/pkg/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Происхождение проверяет CORS middleware на HTTP-уровне
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler апгрейдит соединения и регистрирует клиентов в hub
type WSHandler struct {
	hub        *ws.Hub
	jwtService *auth.JWTService
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(hub *ws.Hub, jwtService *auth.JWTService) *WSHandler {
	return &WSHandler{hub: hub, jwtService: jwtService}
}

// Connect устанавливает WebSocket-соединение.
// Токен передается в query-параметре, т.к. браузерный WebSocket API
// не позволяет выставить заголовок Authorization.
// GET /ws?token=...
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда соединения: %v", err)
		return
	}
	ws.NewClient(h.hub, conn, claims.UserID)
}
