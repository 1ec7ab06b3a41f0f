package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rpi-tools/internal/config"
	"rpi-tools/internal/web"
)

// version is stamped with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./shari-aprs.yaml", "Path to YAML config")
	flag.Parse()

	logs := web.NewLogBuffer(1000)
	log.SetOutput(io.MultiWriter(os.Stderr, logs))

	cfg, err := config.LoadBeacon(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("shari-aprs starting version=%s call=%s", version, cfg.APRS.Callsign)

	rt, err := newBeaconRuntime(cfg)
	if err != nil {
		log.Fatalf("init failed: %v", err)
	}
	if err := rt.Start(ctx); err != nil {
		rt.Close()
		log.Fatalf("start failed: %v", err)
	}
	defer rt.Close()

	if cfg.Web.Listen != "" {
		go func() {
			log.Printf("web listening addr=%s", cfg.Web.Listen)
			if err := web.Serve(ctx, cfg.Web.Listen, web.Handler(rt.status, logs)); err != nil && ctx.Err() == nil {
				log.Printf("web server stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Printf("shari-aprs stopping")
}
