package server

import (
	"net/http"

	"github.com/qymmdj/daily-stock-analysis/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// WebSocket hub
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same trust model as the REST CORS layer: local consumers only
		return true
	},
}

// -----------------------------------------------------------------------------

// handleWebsockets owns the clients map; all membership changes go
// through the register/unregister channels.
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case client, ok := <-s.register:
			if !ok {
				return
			}
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			s.stateMutex.Unlock()
			s.Logger.Debug("WebSocket client connected (%d total)", len(s.clients))

			// New clients get the full latest state straight away
			s.stateMutex.RLock()
			snapshot := s.latestState
			s.stateMutex.RUnlock()
			select {
			case client.send <- snapshot:
			default:
			}

		case client, ok := <-s.unregister:
			if !ok {
				return
			}
			s.stateMutex.Lock()
			if _, exists := s.clients[client]; exists {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()
			s.Logger.Debug("WebSocket client disconnected (%d total)", len(s.clients))

		case data, ok := <-s.broadcast:
			if !ok {
				return
			}
			s.stateMutex.Lock()
			for client := range s.clients {
				select {
				case client.send <- data:
				default:
					// Drop clients that cannot keep up
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.stateMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warning("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		server: s,
		conn:   conn,
		send:   make(chan *models.MLatestData, 16),
	}
	s.register <- client

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// IDataExchanger
// -----------------------------------------------------------------------------

// SetLatest replaces the state served to newly connected clients.
func (s *APIServer) SetLatest(data *models.MLatestData) {
	s.stateMutex.Lock()
	s.latestState = data
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

// Broadcast pushes an update to every connected client. Never blocks:
// if the hub queue is full the update is dropped and the next one wins.
func (s *APIServer) Broadcast(data *models.MLatestData) {
	select {
	case s.broadcast <- data:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update")
	}
}
