package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"rpi-tools/internal/aprs"
	"rpi-tools/internal/beacon"
	"rpi-tools/internal/config"
	"rpi-tools/internal/gps"
	"rpi-tools/internal/mqttpub"
	"rpi-tools/internal/web"
)

type beaconRuntime struct {
	cfg    config.BeaconConfig
	gps    *gps.Service
	uplink *aprs.Uplink
	beacon *beacon.Service
	mqtt   *mqttpub.Publisher
	status *web.Status
}

func newBeaconRuntime(cfg config.BeaconConfig) (*beaconRuntime, error) {
	a := cfg.APRS
	if strings.TrimSpace(a.Passcode) == "" {
		a.Passcode = strconv.Itoa(aprs.Passcode(a.Callsign))
		log.Printf("aprs passcode not set, using computed passcode for %s", aprs.BaseCallsign(a.Callsign))
	} else if err := aprs.ValidatePasscode(a.Callsign, a.Passcode); err != nil {
		// -1 and typos still log in; the server just drops the packets.
		log.Printf("aprs passcode warning: %v", err)
	}
	uplink, err := aprs.NewUplink(aprs.Config{
		Callsign:  a.Callsign,
		Passcode:  a.Passcode,
		Server:    a.Server,
		Port:      a.Port,
		Transport: a.Transport,
		RelayCmd:  a.RelayCmd,
		Timeout:   a.Timeout,
		Software:  "shari-aprs",
		Version:   version,
	})
	if err != nil {
		return nil, err
	}

	g := cfg.GPS
	gpsSvc := gps.New(gps.Config{
		Source:    g.Source,
		Device:    g.Device,
		Baud:      g.Baud,
		Timeout:   g.Timeout,
		GPSDAddr:  g.GPSDAddr,
		Latitude:  g.Latitude,
		Longitude: g.Longitude,
		AltitudeM: g.AltitudeM,
	})

	b, err := beacon.New(beacon.Config{
		Interval:       cfg.Beacon.Interval,
		SendOnMoveOnly: cfg.Beacon.SendOnMoveOnly,
		Station: aprs.Position{
			Source:      a.Callsign,
			SymbolTable: a.SymbolTable,
			Symbol:      a.Symbol,
			Comment:     a.Comment,
		},
	}, gpsSvc, uplink)
	if err != nil {
		return nil, err
	}

	rt := &beaconRuntime{
		cfg:    cfg,
		gps:    gpsSvc,
		uplink: uplink,
		beacon: b,
		status: web.NewStatus("shari-aprs", version),
	}
	rt.status.Add("gps", func() any { return gpsSvc.Snapshot() })
	rt.status.Add("beacon", func() any { return b.Snapshot() })
	rt.status.Add("aprs", func() any {
		return map[string]string{"server": uplink.Addr(), "transport": uplink.Transport()}
	})
	return rt, nil
}

func (rt *beaconRuntime) Start(ctx context.Context) error {
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
	rt.beacon.OnUpdate(func(snap beacon.Snapshot) {
		if err := rt.mqtt.Publish(snap); err != nil {
			log.Printf("mqtt publish failed: %v", err)
		}
	})

	if err := rt.gps.Start(ctx); err != nil {
		return fmt.Errorf("gps start: %w", err)
	}
	if err := rt.beacon.Start(ctx); err != nil {
		return fmt.Errorf("beacon start: %w", err)
	}
	return nil
}

func (rt *beaconRuntime) Close() {
	rt.beacon.Close()
	rt.gps.Close()
	rt.mqtt.Close()
}
