// Package gps tracks the station position for the APRS beacon.
//
// Three sources are supported:
//   - serial: NMEA 0183 from a USB or UART receiver (RMC for position and
//     speed, GGA for altitude, satellites and HDOP)
//   - gpsd: JSON TPV/SKY reports from a local gpsd
//   - config: a fixed position from the config file
//
// The latest fix is kept in memory and marked stale once it is older than
// the configured timeout.
package gps
