// vive-server samples the tracking device and broadcasts pose samples
// over TCP. Producer and broadcast server run on independent
// goroutines, sharing only the mailbox.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teleopkit/go-vive/internal/config"
	"github.com/teleopkit/go-vive/internal/log"
	"github.com/teleopkit/go-vive/pkg/filter"
	"github.com/teleopkit/go-vive/pkg/mailbox"
	"github.com/teleopkit/go-vive/pkg/producer"
	"github.com/teleopkit/go-vive/pkg/server"
	"github.com/teleopkit/go-vive/pkg/tracker"
	"github.com/teleopkit/go-vive/pkg/web"
)

func main() {
	webAddr := flag.String("web", "", "monitoring server address (overrides VIVE_WEB_PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	// One tracking session per process. A hardware runtime plugs in
	// here by implementing tracker.Runtime.
	rt := tracker.Runtime(tracker.NewMock())
	if err := rt.Init(); err != nil {
		log.Error("tracking runtime init failed", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	box := mailbox.New()
	defer box.Close()

	loop := producer.New(rt, filter.New(cfg.RejectThreshold), box, producer.Options{
		ActiveInterval: cfg.ActivePollInterval(),
		IdleInterval:   cfg.IdlePollInterval(),
	})

	opts := server.Options{
		Addr:    cfg.ListenAddr(),
		Restamp: cfg.Restamp,
	}

	// Monitoring surface is optional. The monitor is constructed first
	// so its Publish tap can go into the server options, but it only
	// starts listening after srv exists: the goroutine start below
	// orders the srv write before any status request reads it.
	var srv *server.Server
	var monitor *web.Server
	addr := *webAddr
	if addr == "" && cfg.WebPort != 0 {
		addr = cfg.WebAddr()
	}
	if addr != "" {
		monitor = web.NewServer(func() web.Status {
			ps := loop.Stats()
			ss := srv.Stats()
			return web.Status{
				Peers:           ss.Peers,
				PeersTotal:      ss.PeersTotal,
				MessagesSent:    ss.Sent,
				PeersDropped:    ss.Dropped,
				SamplesAccepted: ps.Accepted,
				SamplesRejected: ps.Rejected,
				EmptyTicks:      ps.EmptyTicks,
			}
		})
		opts.Tap = monitor.Publish
	}
	srv = server.New(box, opts)

	if monitor != nil {
		go func() {
			log.Info("monitoring server listening", "addr", addr)
			if err := monitor.Listen(addr); err != nil {
				log.Error("monitoring server failed", "error", err)
			}
		}()
		defer monitor.Shutdown()
	}

	go func() {
		if err := loop.Run(ctx); err != nil {
			log.Error("producer loop failed", "error", err)
			cancel()
		}
	}()

	// A bind failure is fatal; anything else runs until the signal.
	if err := srv.Run(ctx); err != nil {
		log.Error("broadcast server failed", "error", err)
		os.Exit(1)
	}
}
