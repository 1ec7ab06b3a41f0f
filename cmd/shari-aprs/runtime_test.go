package main

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"rpi-tools/internal/beacon"
	"rpi-tools/internal/config"
)

func testConfig(t *testing.T, port int) config.BeaconConfig {
	t.Helper()
	lat, lon := 47.2692, 9.6487
	cfg := config.BeaconConfig{
		APRS: config.APRSConfig{
			Callsign: "oe9sau-10",
			Passcode: "17569",
			Server:   "127.0.0.1",
			Port:     port,
			Comment:  "Pi beacon",
			Timeout:  2 * time.Second,
		},
		GPS: config.GPSConfig{
			Source:    "config",
			Latitude:  &lat,
			Longitude: &lon,
			AltitudeM: 412,
		},
		Beacon: config.BeaconLoop{Interval: time.Hour},
	}
	if err := config.DefaultAndValidateBeacon(&cfg); err != nil {
		t.Fatalf("DefaultAndValidateBeacon: %v", err)
	}
	return cfg
}

func TestBeaconRuntime_SendsFixedPosition(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	lines := make(chan []string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var got []string
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			got = append(got, strings.TrimRight(sc.Text(), "\r"))
		}
		lines <- got
	}()

	rt, err := newBeaconRuntime(testConfig(t, ln.Addr().(*net.TCPAddr).Port))
	if err != nil {
		t.Fatalf("newBeaconRuntime: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rt.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer rt.Close()

	select {
	case got := <-lines:
		if len(got) != 2 {
			t.Fatalf("lines=%q", got)
		}
		if got[0] != "user OE9SAU-10 pass 17569 vers shari-aprs "+version {
			t.Fatalf("login=%q", got[0])
		}
		want := "OE9SAU-10>APN100,TCPIP*:=4716.15N/00938.92E>Pi beacon:Alt:412.00m Speed:0.00km/h"
		if got[1] != want {
			t.Fatalf("packet=%q want %q", got[1], want)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no packet received")
	}

	deadline := time.Now().Add(2 * time.Second)
	for rt.beacon.Snapshot().LastOutcome != beacon.OutcomeSent {
		if time.Now().After(deadline) {
			t.Fatalf("snapshot=%+v", rt.beacon.Snapshot())
		}
		time.Sleep(10 * time.Millisecond)
	}

	snap := rt.status.Snapshot(time.Now())
	for _, name := range []string{"gps", "beacon", "aprs"} {
		if _, ok := snap.Sections[name]; !ok {
			t.Fatalf("missing status section %q", name)
		}
	}
}

func TestBeaconRuntime_ComputesMissingPasscode(t *testing.T) {
	cfg := testConfig(t, 14580)
	cfg.APRS.Passcode = ""
	if _, err := newBeaconRuntime(cfg); err != nil {
		t.Fatalf("newBeaconRuntime: %v", err)
	}
}

func TestBeaconRuntime_RejectsBadTransport(t *testing.T) {
	cfg := testConfig(t, 14580)
	cfg.APRS.Transport = "command"
	cfg.APRS.RelayCmd = `ncat "unterminated`
	if _, err := newBeaconRuntime(cfg); err == nil {
		t.Fatalf("expected error")
	}
}
