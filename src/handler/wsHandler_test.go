package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"relayapi/src/model"
	"relayapi/src/store"
)

func TestWSHandlerPushesAppends(t *testing.T) {
	st := store.New("")
	srv := httptest.NewServer(WSHandler(st))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// give the handler a moment to subscribe before appending
	time.Sleep(50 * time.Millisecond)

	st.Append(model.Event{
		Ts: 1700000000, TraderID: "trader-1", TraderKey: "TK001",
		Action: model.ActionOpenBuy, Symbol: "EURUSD", Volume: 0.1,
	})

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	var evt model.Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if evt.ID != 1 || evt.Action != "OPEN_BUY" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestWSHandlerClientCloseUnsubscribes(t *testing.T) {
	st := store.New("")
	srv := httptest.NewServer(WSHandler(st))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	conn.Close()

	// appends after the client is gone must not block or panic
	for i := 0; i < 10; i++ {
		st.Append(model.Event{Action: model.ActionBuy, Symbol: "EURUSD"})
	}
}
