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
	flag.StringVar(&configPath, "config", "./oled-status.yaml", "Path to YAML config")
	flag.Parse()

	logs := web.NewLogBuffer(1000)
	log.SetOutput(io.MultiWriter(os.Stderr, logs))

	cfg, err := config.LoadStatus(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("oled-status starting version=%s driver=%s bus=%s addr=0x%02X", version, cfg.Display.Driver, cfg.Display.I2CBus, cfg.Display.Address)

	rt, err := newStatusRuntime(cfg)
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
	log.Printf("oled-status stopping")
}
