package aprs

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

const testPacket = "OE9SAU-10>APN100,TCPIP*:=4807.04N/01131.00E>test:Alt:545.40m Speed:0.00km/h"

func TestNewUplink_Validation(t *testing.T) {
	c := qt.New(t)
	good := Config{Callsign: "OE9SAU-10", Passcode: "17569", Server: "rotate.aprs2.net", Port: 14580}

	_, err := NewUplink(good)
	c.Assert(err, qt.IsNil)

	bad := good
	bad.Callsign = ""
	_, err = NewUplink(bad)
	c.Assert(err, qt.ErrorMatches, `aprs: callsign is required`)

	bad = good
	bad.Passcode = " "
	_, err = NewUplink(bad)
	c.Assert(err, qt.ErrorMatches, `aprs: passcode is required`)

	bad = good
	bad.Port = 70000
	_, err = NewUplink(bad)
	c.Assert(err, qt.ErrorMatches, `aprs: port 70000 out of range`)

	bad = good
	bad.Transport = "udp"
	_, err = NewUplink(bad)
	c.Assert(err, qt.ErrorMatches, `aprs: unknown transport "udp"`)

	bad = good
	bad.Transport = "command"
	bad.RelayCmd = "   "
	_, err = NewUplink(bad)
	c.Assert(err, qt.ErrorMatches, `aprs: relay command is empty`)
}

func TestRelayArgv(t *testing.T) {
	c := qt.New(t)
	argv, err := relayArgv(`ncat --send-only {server} {port}`, "euro.aprs2.net", 14580)
	c.Assert(err, qt.IsNil)
	c.Assert(argv, qt.DeepEquals, []string{"ncat", "--send-only", "euro.aprs2.net", "14580"})

	argv, err = relayArgv(`socat - 'TCP:{server}:{port},connect-timeout=5'`, "10.0.0.1", 14580)
	c.Assert(err, qt.IsNil)
	c.Assert(argv, qt.DeepEquals, []string{"socat", "-", "TCP:10.0.0.1:14580,connect-timeout=5"})
}

func TestUplink_TCP(t *testing.T) {
	c := qt.New(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	defer ln.Close()

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			got <- "accept: " + err.Error()
			return
		}
		defer conn.Close()
		b, _ := io.ReadAll(conn)
		got <- string(b)
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	u, err := NewUplink(Config{
		Callsign: "OE9SAU-10",
		Passcode: "17569",
		Server:   "127.0.0.1",
		Port:     port,
		Timeout:  2 * time.Second,
		Software: "shari-aprs",
		Version:  "test",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(u.Transport(), qt.Equals, TransportTCP)
	c.Assert(u.Addr(), qt.Equals, "127.0.0.1:"+strconv.Itoa(port))

	c.Assert(u.Send(context.Background(), testPacket), qt.IsNil)

	select {
	case s := <-got:
		c.Assert(s, qt.Equals, "user OE9SAU-10 pass 17569 vers shari-aprs test\r\n"+testPacket+"\r\n")
	case <-time.After(2 * time.Second):
		c.Fatalf("server received nothing")
	}
}

func TestUplink_TCPDialError(t *testing.T) {
	c := qt.New(t)
	u, err := NewUplink(Config{Callsign: "N0CALL", Passcode: "13023", Server: "aprs.invalid", Port: 14580})
	c.Assert(err, qt.IsNil)
	u.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}
	c.Assert(u.Send(context.Background(), testPacket), qt.ErrorMatches, `aprs: dial aprs.invalid:14580: connection refused`)
}

func TestUplink_RejectsMultilinePacket(t *testing.T) {
	c := qt.New(t)
	u, err := NewUplink(Config{Callsign: "N0CALL", Passcode: "13023", Server: "x", Port: 1})
	c.Assert(err, qt.IsNil)
	c.Assert(u.Send(context.Background(), "a\nb"), qt.ErrorMatches, `aprs: packet must be a single line`)
}

func TestUplink_Command(t *testing.T) {
	c := qt.New(t)
	u, err := NewUplink(Config{
		Callsign:  "OE9SAU-10",
		Passcode:  "17569",
		Server:    "rotate.aprs2.net",
		Port:      14580,
		Transport: "command",
		RelayCmd:  "ncat --send-only {server} {port}",
		Software:  "shari-aprs",
		Version:   "test",
	})
	c.Assert(err, qt.IsNil)

	var gotArgv []string
	var gotStdin string
	u.run = func(ctx context.Context, argv []string, stdin []byte) ([]byte, error) {
		gotArgv = argv
		gotStdin = string(stdin)
		return nil, nil
	}
	c.Assert(u.Send(context.Background(), testPacket), qt.IsNil)
	c.Assert(gotArgv, qt.DeepEquals, []string{"ncat", "--send-only", "rotate.aprs2.net", "14580"})
	c.Assert(gotStdin, qt.Equals, "user OE9SAU-10 pass 17569 vers shari-aprs test\r\n"+testPacket+"\r\n")
}

func TestUplink_CommandFailureIncludesStderr(t *testing.T) {
	c := qt.New(t)
	u, err := NewUplink(Config{
		Callsign:  "OE9SAU-10",
		Passcode:  "17569",
		Server:    "rotate.aprs2.net",
		Port:      14580,
		Transport: "command",
		RelayCmd:  "ncat --send-only {server} {port}",
	})
	c.Assert(err, qt.IsNil)
	u.run = func(ctx context.Context, argv []string, stdin []byte) ([]byte, error) {
		return []byte("Ncat: Connection refused.\n"), errors.New("exit status 1")
	}
	c.Assert(u.Send(context.Background(), testPacket), qt.ErrorMatches, `aprs: relay ncat failed: exit status 1: Ncat: Connection refused\.`)
}
