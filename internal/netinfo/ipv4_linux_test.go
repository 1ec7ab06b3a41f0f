//go:build linux

package netinfo

import (
	"net"
	"testing"
)

func TestIfaceIPv4_Loopback(t *testing.T) {
	lo, err := net.InterfaceByName("lo")
	if err != nil || lo.Flags&net.FlagUp == 0 {
		t.Skip("no loopback interface")
	}
	if got := ifaceIPv4("lo"); got != "127.0.0.1" {
		t.Fatalf("ifaceIPv4(lo)=%q want 127.0.0.1", got)
	}
}

func TestIfaceIPv4_Missing(t *testing.T) {
	if got := ifaceIPv4("nosuchif0"); got != "" {
		t.Fatalf("ifaceIPv4(nosuchif0)=%q want empty", got)
	}
}
