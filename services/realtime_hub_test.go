package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestRealtimeHubBroadcast(t *testing.T) {
	t.Parallel()
	hub := NewRealtimeHub()
	registered := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(&WSClient{UserID: 7, Conn: conn})
		close(registered)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatalf("client never registered")
	}
	if n := hub.Connections(7); n != 1 {
		t.Fatalf("expected one connection, got %d", n)
	}

	hub.Broadcast(8, EventNotification, "not for you")
	hub.Broadcast(7, EventDailyLogUpdated, map[string]any{"date": "2024-05-15"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != EventDailyLogUpdated || msg.Data["date"] != "2024-05-15" {
		t.Fatalf("unexpected message %+v", msg)
	}
}
