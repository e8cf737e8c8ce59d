package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to read messages from a WebSocket connection with a timeout.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	var msg WSMessage
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	err = json.Unmarshal(p, &msg)
	require.NoError(t, err, "Failed to unmarshal WSMessage JSON")
	return msg
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		room, _ := strconv.ParseUint(r.URL.Query().Get("room"), 10, 64)
		ServeWs(hub, w, r, uint(room))
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, wsURL string, room uint) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/ws?room=%d", wsURL, room), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversToOwnerRoomOnly(t *testing.T) {
	hub, wsURL := startHub(t)

	alice1 := dial(t, wsURL, 1)
	alice2 := dial(t, wsURL, 1)
	bob := dial(t, wsURL, 2)

	require.Eventually(t, func() bool {
		return hub.RoomSize(1) == 2 && hub.RoomSize(2) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(1, WSMessage{Type: NoteCreatedType, NoteID: 5, Payload: &NotePayload{ID: 5, Title: "groceries", Content: "milk"}})

	for _, conn := range []*websocket.Conn{alice1, alice2} {
		msg := readMessage(t, conn)
		assert.Equal(t, NoteCreatedType, msg.Type)
		assert.Equal(t, uint(5), msg.NoteID)
		assert.Equal(t, &NotePayload{ID: 5, Title: "groceries", Content: "milk"}, msg.Payload)
	}

	bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	var netErr net.Error
	require.ErrorAs(t, err, &netErr, "bob must not receive alice's note events")
	assert.True(t, netErr.Timeout())
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, wsURL := startHub(t)

	conn := dial(t, wsURL, 3)
	require.Eventually(t, func() bool { return hub.RoomSize(3) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.RoomSize(3) == 0 }, time.Second, 10*time.Millisecond)

	// Publishing to an empty room is harmless.
	hub.Publish(3, WSMessage{Type: NoteDeletedType, NoteID: 1})
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub() // not running, so nothing drains the queue

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.Publish(1, WSMessage{Type: NoteUpdatedType, NoteID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}
