package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgetly/internal/log"

	"github.com/gorilla/websocket"
)

func newTestHub() *Hub {
	h := NewHub(log.New(log.DefaultConfig()))
	h.Start()
	return h
}

// dialTestClient upgrades an incoming connection, registers it with the hub
// under the given owner, and returns the client side of the connection.
func dialTestClient(t *testing.T, hub *Hub, owner string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.RegisterClient(conn, owner)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", hub.ClientCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_NotifyProgressChanged(t *testing.T) {
	hub := newTestHub()
	conn := dialTestClient(t, hub, "alice")
	waitForClients(t, hub, 1)

	hub.NotifyProgressChanged("alice")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var event struct {
		Type  string `json:"type"`
		Owner string `json:"owner"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if event.Type != "progress_changed" {
		t.Errorf("event type = %q, want progress_changed", event.Type)
	}
	if event.Owner != "alice" {
		t.Errorf("event owner = %q, want alice", event.Owner)
	}
}

func TestHub_OwnerIsolation(t *testing.T) {
	hub := newTestHub()
	aliceConn := dialTestClient(t, hub, "alice")
	bobConn := dialTestClient(t, hub, "bob")
	waitForClients(t, hub, 2)

	hub.NotifyProgressChanged("alice")

	aliceConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := aliceConn.ReadMessage(); err != nil {
		t.Fatalf("alice should receive the event: %v", err)
	}

	bobConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := bobConn.ReadMessage(); err == nil {
		t.Error("bob should not receive alice's event")
	}
}

func TestHub_UnregisterClosesConnection(t *testing.T) {
	hub := newTestHub()
	conn := dialTestClient(t, hub, "alice")
	waitForClients(t, hub, 1)

	// The server side of the connection is the one the hub tracks. Find it by
	// broadcasting after unregistering every client.
	hub.mu.Lock()
	var serverConn *websocket.Conn
	for c := range hub.clients {
		serverConn = c
	}
	hub.mu.Unlock()

	hub.UnregisterClient(serverConn)
	waitForClients(t, hub, 0)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("client read should fail after hub closed the connection")
	}
}
