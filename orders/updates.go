package orders

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/jillianguerra/home-depot/models"
	"github.com/jillianguerra/home-depot/middleware"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub tracks websocket subscribers to order updates, keyed by user id. A
// checked-out order is pushed to every connection of its owner.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) add(conn *websocket.Conn, userID string) {
	h.mu.Lock()
	h.clients[conn] = userID
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast pushes the order to all connections of its owning user.
func (h *Hub) Broadcast(o models.Order) {
	data, err := json.Marshal(o)
	if err != nil {
		log.Println("order broadcast marshal error:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, userID := range h.clients {
		if userID != o.User {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// OrderUpdates upgrades the connection and streams the caller's checked-out
// orders. Browsers cannot set headers on websocket dials, so the token
// rides in the query string. GET /api/orders/updates?token=...
func (h *Handler) OrderUpdates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := middleware.ValidateJWT(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.hub.add(conn, claims.UserID)

	// Reads are discarded; the socket exists only for server pushes. The
	// read loop notices disconnects.
	go func() {
		defer h.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
