// Package server implements the TCP broadcast side of the pipeline. It
// owns the mailbox's reader, serializes each fresh sample to the wire
// format once, and fans the frame out to every connected peer. Peers
// are best-effort: a slow or dead peer is dropped, never waited on.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teleopkit/go-vive/internal/log"
	"github.com/teleopkit/go-vive/pkg/mailbox"
	"github.com/teleopkit/go-vive/pkg/pose"
	"github.com/teleopkit/go-vive/pkg/wire"
)

const (
	// writeWait bounds a single frame write; a peer that cannot take a
	// frame in this long is dropped.
	writeWait = 5 * time.Second

	// peerSendBuffer frames may queue per peer before it counts as slow.
	peerSendBuffer = 8
)

// Options configure a Server.
type Options struct {
	// Addr is the listen address, e.g. ":12345".
	Addr string

	// Restamp rewrites each sample's timestamp to send time before
	// fan-out, so receivers see server-send latency rather than capture
	// latency. Matches the historical behavior; turn off to preserve
	// capture time.
	Restamp bool

	// Tap, when set, receives every encoded frame after fan-out. Used to
	// feed the monitoring websocket without a second encode.
	Tap func(frame []byte)
}

// Stats is a snapshot of the server's counters.
type Stats struct {
	Peers      int
	PeersTotal uint64
	Sent       uint64
	Dropped    uint64
}

type peer struct {
	id   string
	conn net.Conn
	send chan []byte
}

// Server accepts peers and broadcasts mailbox samples to them.
type Server struct {
	box  *mailbox.Mailbox
	opts Options

	mu         sync.Mutex
	ln         net.Listener
	register   chan *peer
	unregister chan *peer
	frames     chan []byte

	peerCount  atomic.Int64
	peersTotal atomic.Uint64
	sent       atomic.Uint64
	dropped    atomic.Uint64
}

// New creates a server over the given mailbox. Call Run to bind and serve.
func New(box *mailbox.Mailbox, opts Options) *Server {
	return &Server{
		box:        box,
		opts:       opts,
		register:   make(chan *peer),
		unregister: make(chan *peer),
		frames:     make(chan []byte, 1),
	}
}

// Stats returns a snapshot of the counters. Safe from any goroutine.
func (s *Server) Stats() Stats {
	return Stats{
		Peers:      int(s.peerCount.Load()),
		PeersTotal: s.peersTotal.Load(),
		Sent:       s.sent.Load(),
		Dropped:    s.dropped.Load(),
	}
}

// Addr returns the bound listen address once Run has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run binds the listener and serves until ctx is canceled. A bind
// failure is returned immediately: it is fatal to the process.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.opts.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Info("broadcast server listening", "addr", ln.Addr().String())

	// Close the listener when ctx falls; that unblocks Accept.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	go s.pump(ctx)
	go s.acceptLoop(ctx)

	s.fanOut(ctx)
	return nil
}

// pump moves samples from the mailbox into the frame channel, encoding
// each exactly once.
func (s *Server) pump(ctx context.Context) {
	for {
		sample, ok := s.box.Wait(ctx)
		if !ok {
			return
		}
		if s.opts.Restamp {
			sample.Time = pose.Now()
		}
		frame, err := wire.FromSample(sample).Marshal()
		if err != nil {
			log.Error("encode sample", "error", err)
			continue
		}
		select {
		case s.frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// acceptLoop admits inbound connections until the listener closes.
func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("accept failed", "error", err)
			continue
		}
		p := &peer{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan []byte, peerSendBuffer),
		}
		select {
		case s.register <- p:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

// fanOut owns the peer set. Registration, removal and broadcast all run
// through this single goroutine, so the map needs no lock.
func (s *Server) fanOut(ctx context.Context) {
	peers := make(map[*peer]bool)
	defer func() {
		for p := range peers {
			close(p.send)
			p.conn.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case p := <-s.register:
			peers[p] = true
			s.peerCount.Store(int64(len(peers)))
			s.peersTotal.Add(1)
			go p.writePump(s)
			go p.readPump(s)
			log.Info("peer connected",
				"peer", p.id, "remote", p.conn.RemoteAddr().String(), "total", len(peers))

		case p := <-s.unregister:
			if peers[p] {
				delete(peers, p)
				close(p.send)
				p.conn.Close()
			}
			s.peerCount.Store(int64(len(peers)))
			log.Info("peer disconnected", "peer", p.id, "total", len(peers))

		case frame := <-s.frames:
			for p := range peers {
				select {
				case p.send <- frame:
				default:
					// Peer cannot keep up; cut it loose rather than
					// holding back the others.
					delete(peers, p)
					close(p.send)
					p.conn.Close()
					s.dropped.Add(1)
					log.Warn("dropped slow peer", "peer", p.id)
				}
			}
			s.peerCount.Store(int64(len(peers)))
			s.sent.Add(uint64(len(peers)))
			if s.opts.Tap != nil {
				s.opts.Tap(frame)
			}
		}
	}
}

// writePump is the only writer on the peer's connection.
func (p *peer) writePump(s *Server) {
	for frame := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if _, err := p.conn.Write(frame); err != nil {
			select {
			case s.unregister <- p:
			default:
			}
			return
		}
	}
}

// readPump discards anything the peer sends; its job is detecting the
// disconnect promptly.
func (p *peer) readPump(s *Server) {
	buf := make([]byte, 512)
	for {
		if _, err := p.conn.Read(buf); err != nil {
			select {
			case s.unregister <- p:
			default:
			}
			return
		}
	}
}
