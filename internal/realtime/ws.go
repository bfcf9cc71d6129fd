package realtime

import (
	"net/http"
	"time"

	"chopline-be/internal/logger"
	"chopline-be/internal/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

// WSHandler upgrades a client connection and streams matching order events
// until the client goes away. Each connection owns one hub subscription,
// released on teardown.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// filterFor derives the subscription filter from the requested view and the
// authenticated actor. Drivers watch the shared offer pool or their own
// active deliveries; restaurants and customers watch their own orders.
func filterFor(r *http.Request) (Filter, bool) {
	actorID, ok := utils.GetActorIDFromContext(r.Context())
	if !ok {
		return Filter{}, false
	}

	switch r.URL.Query().Get("view") {
	case "offers":
		return Filter{OffersOnly: true}, true
	case "deliveries":
		return Filter{DriverID: actorID}, true
	case "restaurant":
		return Filter{RestaurantID: actorID}, true
	case "customer":
		return Filter{CustomerID: actorID}, true
	}
	return Filter{}, false
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterFor(r)
	if !ok {
		http.Error(w, "unknown view or missing identity", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Subscribe(filter)

	log := logger.FromCtx(r.Context()).With(
		zap.String("view", r.URL.Query().Get("view")),
	)
	log.Info("realtime client connected")

	done := make(chan struct{})

	// Read pump: we expect no client messages, but reading is how we learn
	// the peer closed.
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Unsubscribe()
		conn.Close()
		log.Info("realtime client disconnected")
	}()

	for {
		select {
		case <-done:
			return

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case ev, open := <-sub.C:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Warn("failed to push order event", zap.Error(err))
				return
			}
		}
	}
}
