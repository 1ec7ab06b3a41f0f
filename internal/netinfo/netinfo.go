// Package netinfo answers "which interface is this box on and what is its
// address" for the status display.
package netinfo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const defaultSysClassNet = "/sys/class/net"

// Status is the network view rendered on the first page.
type Status struct {
	Iface     string `json:"iface"`
	State     string `json:"state"`
	OperState string `json:"operstate,omitempty"`
	IP        string `json:"ip"`
	SSID      string `json:"ssid,omitempty"`
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Inspector reads interface state from sysfs, the SIOCGIFADDR ioctl and iw.
type Inspector struct {
	sysClassNet string
	ipv4        func(iface string) string
	run         runFunc
	ssidTimeout time.Duration
}

func NewInspector() *Inspector {
	return &Inspector{
		sysClassNet: defaultSysClassNet,
		ipv4:        ifaceIPv4,
		run:         runCommand,
		ssidTimeout: 500 * time.Millisecond,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// IPv4 returns the primary IPv4 address of iface, or "" when it has none.
func (in *Inspector) IPv4(iface string) string {
	if iface == "" {
		return ""
	}
	return in.ipv4(iface)
}

// OperState returns the lowercased kernel operstate, or "" if unreadable.
func (in *Inspector) OperState(iface string) string {
	if iface == "" {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(in.sysClassNet, iface, "operstate"))
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(string(b)))
}

// Up reports link state for the selection heuristic. "dormant" and "unknown"
// count as up: Wi-Fi interfaces sit in dormant during association and many
// USB/virtual drivers never report anything but unknown.
func (in *Inspector) Up(iface string) bool {
	switch in.OperState(iface) {
	case "up", "dormant", "unknown":
		return true
	default:
		return false
	}
}

func (in *Inspector) IsWireless(iface string) bool {
	if iface == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(in.sysClassNet, iface, "wireless"))
	return err == nil
}

// Pick selects the interface to display: the first preferred interface with an
// IPv4 address, else the first one whose link is up, else the first entry.
func (in *Inspector) Pick(preferred []string) string {
	if len(preferred) == 0 {
		return ""
	}
	for _, ifn := range preferred {
		if in.IPv4(ifn) != "" {
			return ifn
		}
	}
	for _, ifn := range preferred {
		if in.Up(ifn) {
			return ifn
		}
	}
	return preferred[0]
}

// SSID returns the SSID iface is associated with, or "" when not associated
// or iw is unavailable.
func (in *Inspector) SSID(ctx context.Context, iface string) string {
	if iface == "" {
		return ""
	}
	cmdCtx, cancel := context.WithTimeout(ctx, in.ssidTimeout)
	defer cancel()
	out, err := in.run(cmdCtx, "iw", "dev", iface, "link")
	if err != nil {
		return ""
	}
	return parseIWLinkSSID(string(out))
}

func parseIWLinkSSID(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "SSID:"); i != -1 {
			return strings.TrimSpace(line[i+len("SSID:"):])
		}
	}
	return ""
}

// Collect builds the network Status for the preferred interfaces.
func (in *Inspector) Collect(ctx context.Context, preferred []string) Status {
	iface := in.Pick(preferred)
	st := Status{Iface: iface, State: "DOWN", IP: "no IP"}
	if iface == "" {
		return st
	}
	st.OperState = in.OperState(iface)
	if in.Up(iface) {
		st.State = "UP"
	}
	if ip := in.IPv4(iface); ip != "" {
		st.IP = ip
	}
	if in.IsWireless(iface) {
		st.SSID = in.SSID(ctx, iface)
	}
	return st
}
