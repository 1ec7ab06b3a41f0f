package netinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

type fakeIface struct {
	operstate string
	wireless  bool
	ip        string
}

func newTestInspector(c *qt.C, ifaces map[string]fakeIface) *Inspector {
	dir := c.TempDir()
	for name, f := range ifaces {
		p := filepath.Join(dir, name)
		c.Assert(os.MkdirAll(p, 0o755), qt.IsNil)
		if f.operstate != "" {
			c.Assert(os.WriteFile(filepath.Join(p, "operstate"), []byte(f.operstate+"\n"), 0o644), qt.IsNil)
		}
		if f.wireless {
			c.Assert(os.MkdirAll(filepath.Join(p, "wireless"), 0o755), qt.IsNil)
		}
	}
	return &Inspector{
		sysClassNet: dir,
		ipv4:        func(iface string) string { return ifaces[iface].ip },
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, errors.New("iw not available")
		},
		ssidTimeout: time.Second,
	}
}

func TestPick_PrefersInterfaceWithAddress(t *testing.T) {
	c := qt.New(t)
	in := newTestInspector(c, map[string]fakeIface{
		"wlan0": {operstate: "up"},
		"eth0":  {operstate: "up", ip: "192.168.1.20"},
	})
	c.Assert(in.Pick([]string{"wlan0", "eth0"}), qt.Equals, "eth0")
}

func TestPick_FallsBackToLinkState(t *testing.T) {
	c := qt.New(t)
	in := newTestInspector(c, map[string]fakeIface{
		"wlan0": {operstate: "down"},
		"eth0":  {operstate: "dormant"},
	})
	c.Assert(in.Pick([]string{"wlan0", "eth0"}), qt.Equals, "eth0")
}

func TestPick_UnknownCountsAsUp(t *testing.T) {
	c := qt.New(t)
	in := newTestInspector(c, map[string]fakeIface{
		"usb0": {operstate: "unknown"},
	})
	c.Assert(in.Pick([]string{"wlan0", "usb0"}), qt.Equals, "usb0")
}

func TestPick_DefaultsToFirst(t *testing.T) {
	c := qt.New(t)
	in := newTestInspector(c, map[string]fakeIface{
		"wlan0": {operstate: "down"},
	})
	c.Assert(in.Pick([]string{"wlan0", "eth0"}), qt.Equals, "wlan0")
	c.Assert(in.Pick(nil), qt.Equals, "")
}

func TestCollect_WiredUp(t *testing.T) {
	c := qt.New(t)
	in := newTestInspector(c, map[string]fakeIface{
		"eth0": {operstate: "UP", ip: "10.0.0.5"},
	})
	st := in.Collect(context.Background(), []string{"wlan0", "eth0"})
	c.Assert(st, qt.DeepEquals, Status{Iface: "eth0", State: "UP", OperState: "up", IP: "10.0.0.5"})
}

func TestCollect_NoAddress(t *testing.T) {
	c := qt.New(t)
	in := newTestInspector(c, map[string]fakeIface{})
	st := in.Collect(context.Background(), []string{"wlan0"})
	c.Assert(st.Iface, qt.Equals, "wlan0")
	c.Assert(st.State, qt.Equals, "DOWN")
	c.Assert(st.IP, qt.Equals, "no IP")
	c.Assert(st.SSID, qt.Equals, "")
}

func TestCollect_WirelessQueriesSSID(t *testing.T) {
	c := qt.New(t)
	in := newTestInspector(c, map[string]fakeIface{
		"wlan0": {operstate: "up", wireless: true, ip: "192.168.4.2"},
	})
	var gotArgs []string
	in.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("Connected to aa:bb:cc:dd:ee:ff (on wlan0)\n\tSSID: Home Net\n\tfreq: 2437\n"), nil
	}
	st := in.Collect(context.Background(), []string{"wlan0", "eth0"})
	c.Assert(st.SSID, qt.Equals, "Home Net")
	c.Assert(gotArgs, qt.DeepEquals, []string{"iw", "dev", "wlan0", "link"})
}

func TestParseIWLinkSSID_NotConnected(t *testing.T) {
	c := qt.New(t)
	c.Assert(parseIWLinkSSID("Not connected.\n"), qt.Equals, "")
}
