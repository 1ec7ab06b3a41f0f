//go:build linux

package netinfo

import (
	"net"

	"golang.org/x/sys/unix"
)

// ifaceIPv4 asks the kernel for the interface address with SIOCGIFADDR, which
// returns the primary (first configured) IPv4 address only.
func ifaceIPv4(iface string) string {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return ""
	}
	defer unix.Close(fd)

	ifr, err := unix.NewIfreq(iface)
	if err != nil {
		return ""
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFADDR, ifr); err != nil {
		return ""
	}
	addr, err := ifr.Inet4Addr()
	if err != nil {
		return ""
	}
	return net.IP(addr).String()
}
