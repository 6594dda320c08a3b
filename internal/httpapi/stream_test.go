package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"scanbridge/internal/domain"
)

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

// waitForClients blocks until the hub has registered n clients; the server
// goroutine registers slightly after the client's dial returns.
func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		count := len(hub.clients)
		hub.mu.Unlock()
		if count >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", n)
}

func TestHubDeliversEvents(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn, cleanup := dialHub(t, hub)
	defer cleanup()
	waitForClients(t, hub, 1)

	hub.Publish(domain.Event{
		Type:       domain.EventMultiplierRequested,
		TerminalID: "terminal-1",
		Code:       "8991002101234",
		At:         time.Now().UTC(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Type != domain.EventMultiplierRequested || got.Code != "8991002101234" {
		t.Fatalf("event = %+v", got)
	}
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn, cleanup := dialHub(t, hub)
	defer cleanup()
	conn.Close()

	// Publishing after the client hung up must not panic; the failed write
	// prunes the dead connection.
	for i := 0; i < 3; i++ {
		hub.Publish(domain.Event{Type: domain.EventScanAccepted, At: time.Now().UTC()})
	}
}
