package inspect

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vuey/pkg/reactive"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WatchMessage is sent over the watch websocket on connect and after every
// change to the store's value.
type WatchMessage struct {
	Store string          `json:"store"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// watch streams a store's "value" getter. An effect re-reads the getter on
// every change and hands the encoded message to the writer loop through a
// one-slot mailbox, so slow clients only ever see the latest value.
func (s *Server) watch(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	getters := e.Getters()
	if getters["value"] == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "store has no value getter"})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	latest := make(chan []byte, 1)
	effect := reactive.NewEffect(func() reactive.Cleanup {
		msg := WatchMessage{Store: e.Name()}
		v, err := getters.Read("value")
		if err == nil {
			msg.Value, err = json.Marshal(v)
		}
		if err != nil {
			msg.Error = err.Error()
		}
		data, _ := json.Marshal(msg)
		offer(latest, data)
		return nil
	})
	defer effect.Dispose()

	s.logger.Debug("watch opened", "store", e.Name())
	defer s.logger.Debug("watch closed", "store", e.Name())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data := <-latest:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// offer replaces whatever is waiting in the one-slot mailbox with data.
func offer(mailbox chan []byte, data []byte) {
	for {
		select {
		case mailbox <- data:
			return
		default:
		}
		select {
		case <-mailbox:
		default:
		}
	}
}
