// Package web serves the monitoring surface: a JSON status endpoint
// and a websocket feed carrying the same wire frames the TCP peers get.
// Browsers subscribe here; robot-side consumers use the TCP port.
package web

import (
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

// Status is the /api/status payload.
type Status struct {
	Peers           int    `json:"peers"`
	PeersTotal      uint64 `json:"peers_total"`
	MessagesSent    uint64 `json:"messages_sent"`
	PeersDropped    uint64 `json:"peers_dropped"`
	SamplesAccepted uint64 `json:"samples_accepted"`
	SamplesRejected uint64 `json:"samples_rejected"`
	EmptyTicks      uint64 `json:"empty_ticks"`
	FeedViewers     int    `json:"feed_viewers"`
}

// StatusFunc supplies the current pipeline counters.
type StatusFunc func() Status

// Server is the monitoring web server.
type Server struct {
	app    *fiber.App
	hub    *feedHub
	status StatusFunc
}

// NewServer builds the fiber app and its routes. status may be nil, in
// which case /api/status reports zeros.
func NewServer(status StatusFunc) *Server {
	s := &Server{
		hub:    newFeedHub(),
		status: status,
	}

	app := fiber.New(fiber.Config{
		AppName:               "vive-monitor",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/api/status", s.handleStatus)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/pose", websocket.New(s.hub.handle))

	s.app = app
	go s.hub.run()
	return s
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	var st Status
	if s.status != nil {
		st = s.status()
	}
	st.FeedViewers = s.hub.Viewers()
	return c.JSON(st)
}

// Publish offers an encoded wire frame to every connected viewer.
// Intended as the broadcast server's Tap.
func (s *Server) Publish(frame []byte) {
	s.hub.Publish(frame)
}

// Listen serves on addr, blocking until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Listener serves on an existing listener; used by tests.
func (s *Server) Listener(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully stops the server and the feed hub.
func (s *Server) Shutdown() error {
	s.hub.stop()
	return s.app.Shutdown()
}
