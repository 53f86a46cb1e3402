package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Hub-originated message types; requirement events come from the service layer
const (
	MsgViewersChanged MessageType = "viewers_changed"
	MsgError          MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans requirement changes out to every panel open on a program
type Hub struct {
	// programID -> open connections
	conns map[string]map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	ProgramID string
	AdvisorID string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	ProgramID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for programID := range h.conns {
				h.dropProgram(programID)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.ProgramID] == nil {
				h.conns[conn.ProgramID] = make(map[*Connection]bool)
			}
			h.conns[conn.ProgramID][conn] = true
			slog.Debug("panel connected", "program_id", conn.ProgramID, "advisor_id", conn.AdvisorID)
			h.notifyViewers(conn.ProgramID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.ProgramID]; ok && set[conn] {
				delete(set, conn)
				close(conn.Send)
				if len(set) == 0 {
					delete(h.conns, conn.ProgramID)
				}
				slog.Debug("panel disconnected", "program_id", conn.ProgramID, "advisor_id", conn.AdvisorID)
				h.notifyViewers(conn.ProgramID)
			}
			h.mu.Unlock()

		case programID := <-h.disconnect:
			h.mu.Lock()
			h.dropProgram(programID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.ProgramID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// dropProgram closes every connection of a program; callers hold mu
func (h *Hub) dropProgram(programID string) {
	for conn := range h.conns[programID] {
		close(conn.Send)
	}
	delete(h.conns, programID)
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastToProgram sends a message to every panel open on a program (implements service.Broadcaster)
func (h *Hub) BroadcastToProgram(programID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	select {
	case h.broadcast <- &BroadcastMessage{
		ProgramID: programID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}:
	case <-h.done:
	}
}

// DisconnectProgram closes every panel open on a program (implements service.Broadcaster)
func (h *Hub) DisconnectProgram(programID string) {
	select {
	case h.disconnect <- programID:
	case <-h.done:
	}
}

// Viewers reports how many panels are open on a program
func (h *Hub) Viewers(programID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[programID])
}

// Close disconnects everyone and stops the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// notifyViewers tells a program's panels how many are open; callers hold mu
func (h *Hub) notifyViewers(programID string) {
	set := h.conns[programID]
	payload, _ := json.Marshal(map[string]interface{}{"programId": programID, "viewers": len(set)})
	data, _ := json.Marshal(&Message{
		Type:    MsgViewersChanged,
		Payload: payload,
	})
	for conn := range set {
		select {
		case conn.Send <- data:
		default:
		}
	}
}
