package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/platepush/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		id:        "client-" + sessionID,
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, engine.WebSocketBufferSize),
	}
}

func readMessage(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data := <-ch:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients in session %s, got %d", want, sessionID, hub.ClientCount(sessionID))
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if cap(hub.broadcast) != engine.WebSocketBufferSize {
		t.Errorf("Expected broadcast buffer %d, got %d", engine.WebSocketBufferSize, cap(hub.broadcast))
	}
	if hub.register == nil || hub.unregister == nil || hub.counts == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Fatal("Client was not registered in session")
	}

	message := readMessage(t, client.send)
	if message.Event != EventConnected || message.ClientID != client.id {
		t.Errorf("Expected connected message for %s, got %+v", client.id, message)
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	// Unregistering twice must not close the channel twice
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 || !hub.sessions[sessionID][client2] {
		t.Error("client2 should be the only client left")
	}
}

func TestHubBroadcastMessage_SessionScoped(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, "a")
	other := newTestClient(hub, "b")
	hub.registerClient(watcher)
	hub.registerClient(other)
	readMessage(t, watcher.send)
	readMessage(t, other.send)

	hub.broadcastMessage(&Message{SessionID: "a", Event: EventStateUpdate})

	if message := readMessage(t, watcher.send); message.Event != EventStateUpdate {
		t.Errorf("Expected state_update, got %s", message.Event)
	}
	select {
	case <-other.send:
		t.Error("Client of another session received the broadcast")
	default:
	}
}

func TestHubSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	client := &Client{id: "slow", hub: hub, sessionID: "s", send: make(chan []byte, 1)}
	hub.registerClient(client) // fills the buffer with the connected message

	hub.broadcastMessage(&Message{SessionID: "s", Event: EventStateUpdate})

	if _, exists := hub.sessions["s"]; exists {
		t.Error("Expected a client with a full buffer to be dropped")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" || message.Event != "custom-event" || message.Data != "test-data" {
			t.Errorf("Unexpected message: %+v", message)
		}
		if message.ID == "" {
			t.Error("Expected message ID to be set")
		}
	default:
		t.Fatal("No broadcast message queued")
	}
}

func TestHubBroadcastDoesNotBlockWhenFull(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < engine.WebSocketBufferSize+10; i++ {
			hub.BroadcastToSession("full", &engine.GameState{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastToSession blocked with no hub running")
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "s")
	hub.registerClient(client)
	readMessage(t, client.send)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected client channel to be closed on shutdown")
	}
	if hub.ClientCount("s") != 0 {
		t.Error("Expected ClientCount to report 0 after shutdown")
	}
}

func newWSServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn
}

func readConn(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := startHub(t)
	server := newWSServer(t, hub)

	conn := dial(t, server, "ws-test")
	waitForClients(t, hub, "ws-test", 1)

	if message := readConn(t, conn); message.Event != EventConnected || message.ClientID == "" {
		t.Errorf("Expected connected message with client ID, got %+v", message)
	}

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := startHub(t)
	server := newWSServer(t, hub)

	conn := dial(t, server, "msg-test")
	defer conn.Close()
	readConn(t, conn) // connected

	gameState := &engine.GameState{
		PlayerPos:     engine.Position{X: 3, Y: 2},
		PressedPlates: 1,
		TotalPlates:   2,
	}
	hub.BroadcastToSession("msg-test", gameState)
	hub.BroadcastEvent("msg-test", EventGameEvents, []string{"push"})

	message := readConn(t, conn)
	if message.SessionID != "msg-test" || message.Event != EventStateUpdate {
		t.Fatalf("Unexpected message: %+v", message)
	}
	if message.GameState.PlayerPos != (engine.Position{X: 3, Y: 2}) || message.GameState.PressedPlates != 1 {
		t.Errorf("GameState not correctly received: %+v", message.GameState)
	}

	if message := readConn(t, conn); message.Event != EventGameEvents {
		t.Errorf("Expected game_events, got %s", message.Event)
	}
}
