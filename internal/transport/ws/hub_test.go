package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Connection) Message {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "connection closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func closed(t *testing.T, c *Connection) bool {
	t.Helper()
	select {
	case _, ok := <-c.Send:
		return !ok
	case <-time.After(time.Second):
		return false
	}
}

func newConn(h *Hub, programID string) *Connection {
	return &Connection{ProgramID: programID, AdvisorID: "advisor_1", Send: make(chan []byte, 16), Hub: h}
}

func TestHubBroadcastsToProgram(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a := newConn(h, "p1")
	b := newConn(h, "p2")
	h.Register(a)
	assert.Equal(t, MsgViewersChanged, receive(t, a).Type)
	h.Register(b)
	assert.Equal(t, MsgViewersChanged, receive(t, b).Type)
	assert.Equal(t, 1, h.Viewers("p1"))

	h.BroadcastToProgram("p1", "requirements_published", map[string]int{"version": 2})
	msg := receive(t, a)
	assert.Equal(t, MessageType("requirements_published"), msg.Type)
	assert.JSONEq(t, `{"version":2}`, string(msg.Payload))

	select {
	case <-b.Send:
		t.Fatal("other program received the message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubViewerCounts(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a := newConn(h, "p1")
	b := newConn(h, "p1")
	h.Register(a)
	receive(t, a)
	h.Register(b)

	msg := receive(t, a)
	assert.JSONEq(t, `{"programId":"p1","viewers":2}`, string(msg.Payload))
	receive(t, b)

	h.Unregister(b)
	msg = receive(t, a)
	assert.JSONEq(t, `{"programId":"p1","viewers":1}`, string(msg.Payload))
	assert.True(t, closed(t, b))
}

func TestHubDisconnectProgram(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a := newConn(h, "p1")
	h.Register(a)
	receive(t, a)

	h.DisconnectProgram("p1")
	assert.True(t, closed(t, a))
	assert.Equal(t, 0, h.Viewers("p1"))

	// a late unregister from the read pump is harmless
	h.Unregister(a)
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	a := newConn(h, "p1")
	h.Register(a)
	receive(t, a)

	h.Close()
	assert.True(t, closed(t, a))

	// calls after close do not block
	h.BroadcastToProgram("p1", "x", nil)
	late := newConn(h, "p1")
	h.Register(late)
	assert.True(t, closed(t, late))
}
