package aprs

import (
	"fmt"
	"strconv"
	"strings"
)

// BaseCallsign strips the SSID and upper-cases call.
func BaseCallsign(call string) string {
	call = strings.ToUpper(strings.TrimSpace(call))
	if i := strings.IndexByte(call, '-'); i >= 0 {
		call = call[:i]
	}
	return call
}

// Passcode computes the APRS-IS passcode for call. The SSID does not take
// part in the hash.
func Passcode(call string) int {
	base := BaseCallsign(call)
	hash := 0x73e2
	for i := 0; i < len(base); i += 2 {
		hash ^= int(base[i]) << 8
		if i+1 < len(base) {
			hash ^= int(base[i+1])
		}
	}
	return hash & 0x7fff
}

// ValidateCallsign accepts 1-6 alphanumerics with an optional -SSID of
// 1-2 alphanumerics.
func ValidateCallsign(call string) error {
	call = strings.TrimSpace(call)
	if call == "" {
		return fmt.Errorf("aprs: callsign is required")
	}
	base, ssid, hasSSID := strings.Cut(call, "-")
	if len(base) < 1 || len(base) > 6 || !alnum(base) {
		return fmt.Errorf("aprs: invalid callsign %q", call)
	}
	if hasSSID && (len(ssid) < 1 || len(ssid) > 2 || !alnum(ssid)) {
		return fmt.Errorf("aprs: invalid ssid in %q", call)
	}
	return nil
}

func alnum(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// ValidatePasscode checks a configured passcode. "-1" is the receive-only
// passcode and is always accepted by servers, but packets sent with it are
// dropped; callers should warn.
func ValidatePasscode(call, pass string) error {
	n, err := strconv.Atoi(strings.TrimSpace(pass))
	if err != nil {
		return fmt.Errorf("aprs: passcode %q is not a number", pass)
	}
	if n == -1 {
		return nil
	}
	if n != Passcode(call) {
		return fmt.Errorf("aprs: passcode does not match callsign %s", BaseCallsign(call))
	}
	return nil
}

// LoginLine is the first line sent on an APRS-IS connection.
func LoginLine(call, pass, software, version string) string {
	return fmt.Sprintf("user %s pass %s vers %s %s", strings.ToUpper(strings.TrimSpace(call)), strings.TrimSpace(pass), software, version)
}
