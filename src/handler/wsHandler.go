package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"relayapi/src/model"
)

type eventSubscriber interface {
	Subscribe(buffer int) (<-chan model.Event, func())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Token auth happens in the middleware; origin carries no trust here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsSubscribeBuffer = 64
	wsWriteTimeout    = 10 * time.Second
)

// WSHandler upgrades to a websocket and pushes every event appended after
// the connection was established, one JSON text message per event. Delivery
// is best-effort: a consumer that cannot keep up misses events and is
// expected to resync through the NDJSON stream with its cursor.
func WSHandler(store eventSubscriber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Debug("websocket upgrade failed")
			return
		}
		defer conn.Close()

		events, cancel := store.Subscribe(wsSubscribeBuffer)
		defer cancel()

		// Drain the read side so close frames are processed; the tail is
		// one-way otherwise.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
				if err := conn.WriteJSON(evt); err != nil {
					logger.WithError(err).Debug("websocket write failed, dropping subscriber")
					return
				}
			}
		}
	}
}
