package web

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/teleopkit/go-vive/internal/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// viewerSendBuffer frames may queue per viewer before it counts as
	// too slow to keep.
	viewerSendBuffer = 32
)

// feedHub fans pose frames out to browser viewers. Same single-owner
// design as the TCP side: register, unregister and broadcast all flow
// through run's select loop, so the viewer set needs no lock.
type feedHub struct {
	register   chan *viewer
	unregister chan *viewer
	broadcast  chan []byte
	count      chan int

	done     chan struct{}
	stopOnce sync.Once
}

type viewer struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func newFeedHub() *feedHub {
	return &feedHub{
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		broadcast:  make(chan []byte, 1),
		count:      make(chan int),
		done:       make(chan struct{}),
	}
}

// stop shuts the hub down; run closes every viewer on its way out.
// Safe to call more than once.
func (h *feedHub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish offers a frame to the hub, dropping it if the hub is busy.
// Freshness over completeness, same as the rest of the pipeline.
func (h *feedHub) Publish(frame []byte) {
	select {
	case h.broadcast <- frame:
	default:
	}
}

// Viewers reports the number of connected viewers, zero once the hub
// has stopped.
func (h *feedHub) Viewers() int {
	select {
	case n := <-h.count:
		return n
	case <-h.done:
		return 0
	}
}

func (h *feedHub) run() {
	viewers := make(map[*viewer]bool)
	for {
		select {
		case <-h.done:
			for v := range viewers {
				close(v.send)
			}
			return

		case v := <-h.register:
			viewers[v] = true
			log.Info("feed viewer connected", "viewer", v.id, "total", len(viewers))

		case v := <-h.unregister:
			if viewers[v] {
				delete(viewers, v)
				close(v.send)
			}
			log.Info("feed viewer disconnected", "viewer", v.id, "total", len(viewers))

		case frame := <-h.broadcast:
			for v := range viewers {
				select {
				case v.send <- frame:
				default:
					delete(viewers, v)
					close(v.send)
					log.Warn("dropped slow feed viewer", "viewer", v.id)
				}
			}

		case h.count <- len(viewers):
		}
	}
}

// handle serves one websocket viewer; it blocks until the connection
// closes. Called from the fiber websocket handler.
func (h *feedHub) handle(conn *websocket.Conn) {
	v := &viewer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, viewerSendBuffer),
	}
	select {
	case h.register <- v:
	case <-h.done:
		conn.Close()
		return
	}

	go v.writePump()
	v.readPump(h)
}

// readPump discards inbound frames; it exists to detect disconnects and
// keep pong handling alive.
func (v *viewer) readPump(h *feedHub) {
	defer func() {
		select {
		case h.unregister <- v:
		case <-h.done:
		}
		v.conn.Close()
	}()

	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		v.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer on the viewer's connection.
func (v *viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
