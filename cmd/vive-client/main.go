// vive-client consumes the pose stream, maintains the trigger-latched
// reference frame and forwards absolute/relative transforms to the
// configured sink.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teleopkit/go-vive/internal/config"
	"github.com/teleopkit/go-vive/internal/log"
	"github.com/teleopkit/go-vive/pkg/client"
	"github.com/teleopkit/go-vive/pkg/sink"
)

func main() {
	addr := flag.String("server", "", "broadcast server address (overrides VIVE_SERVER_ADDR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	if *addr == "" {
		*addr = cfg.ServerAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	var out sink.Sink
	if cfg.MQTTBroker != "" {
		m, err := sink.NewMQTT(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			log.Error("mqtt sink", "error", err)
			os.Exit(1)
		}
		out = m
		log.Info("publishing to mqtt", "broker", cfg.MQTTBroker)
	} else {
		out = sink.NewLog()
		log.Info("no broker configured, logging telemetry")
	}
	defer out.Close()

	fwd := sink.NewForwarder(out)
	c := client.New(client.Options{
		Addr:    *addr,
		Backoff: cfg.ReconnectBackoff,
	}, fwd.Handle)

	log.Info("stream client starting", "addr", *addr)
	if err := c.Run(ctx); err != nil {
		log.Error("stream client failed", "error", err)
		os.Exit(1)
	}
}
