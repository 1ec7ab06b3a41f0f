package aprs

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestPasscode(t *testing.T) {
	c := qt.New(t)
	c.Assert(Passcode("N0CALL"), qt.Equals, 13023)
	c.Assert(Passcode("OE9SAU"), qt.Equals, 17569)
	// SSID and case do not matter.
	c.Assert(Passcode("oe9sau-10"), qt.Equals, 17569)
}

func TestValidateCallsign(t *testing.T) {
	c := qt.New(t)
	for _, ok := range []string{"N0CALL", "OE9SAU-10", "dl1abc-1", "K1A-AB"} {
		c.Assert(ValidateCallsign(ok), qt.IsNil, qt.Commentf("call=%q", ok))
	}
	for _, bad := range []string{"", "  ", "OE9SAU-", "OE9SAU-123", "ABCDEFG", "OE9/SAU", "OE9SAU-1-2"} {
		c.Assert(ValidateCallsign(bad), qt.Not(qt.IsNil), qt.Commentf("call=%q", bad))
	}
}

func TestValidatePasscode(t *testing.T) {
	c := qt.New(t)
	c.Assert(ValidatePasscode("OE9SAU-10", "17569"), qt.IsNil)
	c.Assert(ValidatePasscode("OE9SAU", "-1"), qt.IsNil)
	c.Assert(ValidatePasscode("OE9SAU", "12345"), qt.ErrorMatches, `aprs: passcode does not match callsign OE9SAU`)
	c.Assert(ValidatePasscode("OE9SAU", "abc"), qt.ErrorMatches, `aprs: passcode "abc" is not a number`)
}

func TestLoginLine(t *testing.T) {
	c := qt.New(t)
	c.Assert(LoginLine("oe9sau-10", "17569", "shari-aprs", "1.2.0"), qt.Equals, "user OE9SAU-10 pass 17569 vers shari-aprs 1.2.0")
}
