package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"rpi-tools/internal/button"
	"rpi-tools/internal/config"
	"rpi-tools/internal/display"
	"rpi-tools/internal/mqttpub"
	"rpi-tools/internal/netinfo"
	"rpi-tools/internal/screen"
	"rpi-tools/internal/sysinfo"
	"rpi-tools/internal/web"
)

type statusRuntime struct {
	cfg    config.StatusConfig
	drawer display.Drawer
	screen *screen.Service
	button *button.Button
	mqtt   *mqttpub.Publisher
	status *web.Status

	pubMu   sync.Mutex
	lastPub time.Time
}

func newStatusRuntime(cfg config.StatusConfig) (*statusRuntime, error) {
	d := cfg.Display
	drawer, err := display.Open(display.Config{
		Driver:   d.Driver,
		Bus:      d.I2CBus,
		Address:  d.Address,
		Rotate:   d.Rotate,
		Contrast: d.Contrast,
	})
	if err != nil {
		return nil, err
	}

	svc, err := screen.New(screen.Config{
		Title:           d.Name,
		PreferredIfaces: cfg.Network.PreferredIfaces,
		Refresh:         d.Refresh,
		PagePeriod:      d.PagePeriod,
		Font:            d.Font,
		LineHeight:      d.LineHeight,
	}, drawer, sysinfo.NewCollector(sysinfo.DefaultPaths()), netinfo.NewInspector())
	if err != nil {
		_ = drawer.Close()
		return nil, err
	}

	rt := &statusRuntime{
		cfg:    cfg,
		drawer: drawer,
		screen: svc,
		status: web.NewStatus("oled-status", version),
	}
	rt.status.Add("screen", func() any { return svc.Snapshot() })
	return rt, nil
}

func (rt *statusRuntime) Start(ctx context.Context) error {
	if b := rt.cfg.Button; b.Enable {
		btn, err := button.Open(b.Line, b.Debounce)
		if err != nil {
			log.Printf("button disabled: %v", err)
		} else {
			rt.button = btn
			rt.screen.SetButton(btn.Presses())
			log.Printf("button enabled line=%s debounce=%s", b.Line, b.Debounce)
		}
	}

	if m := rt.cfg.MQTT; m.Broker != "" {
		pub, err := mqttpub.Connect(mqttpub.Config{
			Broker:   m.Broker,
			Topic:    m.Topic,
			ClientID: m.ClientID,
			Username: m.Username,
			Password: m.Password,
			QoS:      m.QoS,
			Retain:   m.Retain,
		})
		if err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			rt.mqtt = pub
			log.Printf("mqtt enabled broker=%s topic=%s", m.Broker, pub.Topic())
		}
	}
	rt.screen.OnUpdate(rt.publish)

	if err := rt.screen.Start(ctx); err != nil {
		return fmt.Errorf("screen start: %w", err)
	}
	return nil
}

// publish forwards screen snapshots to MQTT at most once per page period.
func (rt *statusRuntime) publish(snap screen.Snapshot) {
	if rt.mqtt == nil {
		return
	}
	now := time.Now()
	rt.pubMu.Lock()
	if !rt.lastPub.IsZero() && now.Sub(rt.lastPub) < rt.cfg.Display.PagePeriod {
		rt.pubMu.Unlock()
		return
	}
	rt.lastPub = now
	rt.pubMu.Unlock()

	if err := rt.mqtt.Publish(snap); err != nil {
		log.Printf("mqtt publish failed: %v", err)
	}
}

func (rt *statusRuntime) Close() {
	rt.screen.Close()
	if err := rt.button.Close(); err != nil {
		log.Printf("button close: %v", err)
	}
	if err := rt.drawer.Close(); err != nil {
		log.Printf("display close: %v", err)
	}
	rt.mqtt.Close()
}
