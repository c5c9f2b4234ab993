// Package client connects to a broadcast server and delivers decoded
// samples in arrival order. The connection is supervised by a small
// state machine: Disconnected → Connecting → Connected, looping back to
// Disconnected on any read error and retrying forever with backoff.
package client

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/teleopkit/go-vive/internal/log"
	"github.com/teleopkit/go-vive/pkg/wire"
)

// ConnectionState of the client.
type ConnectionState int32

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Handler receives every decoded message, synchronously and in order.
// The next read does not start until the handler returns.
type Handler func(wire.Message)

// Dialer opens the transport connection; injectable for tests.
type Dialer func(ctx context.Context, addr string) (net.Conn, error)

// Options configure a Client.
type Options struct {
	// Addr of the broadcast server, host:port.
	Addr string

	// Backoff between connect attempts. Defaults to one second.
	Backoff time.Duration

	// Dialer defaults to a plain TCP dial.
	Dialer Dialer
}

// Client supervises one connection to the broadcast server.
type Client struct {
	opts    Options
	handler Handler

	state    atomic.Int32
	attempts atomic.Uint64
}

// New creates a client delivering messages to handler.
func New(opts Options, handler Handler) *Client {
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.Dialer == nil {
		opts.Dialer = func(ctx context.Context, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", addr)
		}
	}
	return &Client{opts: opts, handler: handler}
}

// State returns the current connection state. Safe from any goroutine.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Attempts returns how many dials the client has made.
func (c *Client) Attempts() uint64 {
	return c.attempts.Load()
}

// Run blocks, maintaining the connection until ctx is canceled. There
// is no terminal failure state: every connect error and every dropped
// connection is retried after the backoff.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			c.state.Store(int32(Disconnected))
			return nil
		}

		c.state.Store(int32(Connecting))
		c.attempts.Add(1)
		conn, err := c.opts.Dialer(ctx, c.opts.Addr)
		if err != nil {
			c.state.Store(int32(Disconnected))
			log.Warn("connect failed, retrying",
				"addr", c.opts.Addr, "backoff", c.opts.Backoff, "error", err)
			if !sleep(ctx, c.opts.Backoff) {
				return nil
			}
			continue
		}

		c.state.Store(int32(Connected))
		log.Info("connected", "addr", c.opts.Addr)

		// The read loop blocks in conn.Read, so cancellation has to
		// reach it through the connection itself: a watcher closes the
		// conn as soon as ctx is done, failing the pending read.
		connCtx, stop := context.WithCancel(ctx)
		go func() {
			<-connCtx.Done()
			conn.Close()
		}()
		c.readLoop(connCtx, conn)
		stop()
		c.state.Store(int32(Disconnected))

		if !sleep(ctx, c.opts.Backoff) {
			return nil
		}
	}
}

// readLoop decodes messages until the transport fails or ctx is
// canceled. A malformed line is logged and skipped; it does not tear
// down the connection.
func (c *Client) readLoop(ctx context.Context, conn net.Conn) {
	dec := wire.NewDecoder(conn)
	for {
		msg, err := dec.Decode()
		if err != nil {
			if errors.Is(err, wire.ErrMalformed) {
				log.Warn("discarding malformed message", "error", err)
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				log.Info("server closed the connection, reconnecting")
			} else {
				log.Warn("read failed, reconnecting", "error", err)
			}
			return
		}
		c.handler(msg)
	}
}

// sleep waits d or until ctx is canceled; false means canceled.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
