package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// StatusConfig configures cmd/oled-status.
type StatusConfig struct {
	Display DisplayConfig `yaml:"display"`
	Network NetworkConfig `yaml:"network"`
	Button  ButtonConfig  `yaml:"button"`
	Web     WebConfig     `yaml:"web"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
}

// BeaconConfig configures cmd/shari-aprs.
type BeaconConfig struct {
	APRS   APRSConfig `yaml:"aprs"`
	GPS    GPSConfig  `yaml:"gps"`
	Beacon BeaconLoop `yaml:"beacon"`
	Web    WebConfig  `yaml:"web"`
	MQTT   MQTTConfig `yaml:"mqtt"`
}

type DisplayConfig struct {
	// Driver selects the panel controller: sh1106, ssd1306 or none.
	Driver  string `yaml:"driver"`
	I2CBus  string `yaml:"i2c_bus"`
	Address uint16 `yaml:"address"`
	Rotate  int    `yaml:"rotate"`

	// Name is the title shown on every page. Empty means hostname.
	Name       string        `yaml:"name"`
	Font       string        `yaml:"font"`
	LineHeight int           `yaml:"line_height"`
	Refresh    time.Duration `yaml:"refresh"`
	PagePeriod time.Duration `yaml:"page_period"`
	Contrast   int           `yaml:"contrast"`
}

type NetworkConfig struct {
	PreferredIfaces []string `yaml:"preferred_ifaces"`
}

type ButtonConfig struct {
	Enable   bool          `yaml:"enable"`
	Line     string        `yaml:"line"`
	Debounce time.Duration `yaml:"debounce"`
}

type WebConfig struct {
	// Listen is host:port for the HTTP status endpoints. Empty disables them.
	Listen string `yaml:"listen"`
}

type MQTTConfig struct {
	// Broker is a paho broker URL (tcp://host:1883). Empty disables publishing.
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

type APRSConfig struct {
	Callsign    string        `yaml:"callsign"`
	Passcode    string        `yaml:"passcode"`
	Server      string        `yaml:"server"`
	Port        int           `yaml:"port"`
	SymbolTable string        `yaml:"symbol_table"`
	Symbol      string        `yaml:"symbol"`
	Comment     string        `yaml:"comment"`
	Transport   string        `yaml:"transport"`
	RelayCmd    string        `yaml:"relay_command"`
	Timeout     time.Duration `yaml:"timeout"`
}

type GPSConfig struct {
	// Source is usb, gpio or serial (NMEA over a serial port), gpsd, or config
	// (fixed position below).
	Source   string        `yaml:"source"`
	Device   string        `yaml:"device"`
	Baud     int           `yaml:"baud"`
	Timeout  time.Duration `yaml:"timeout"`
	GPSDAddr string        `yaml:"gpsd_addr"`

	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
	AltitudeM float64  `yaml:"altitude_m"`
}

type BeaconLoop struct {
	Interval       time.Duration `yaml:"interval"`
	SendOnMoveOnly bool          `yaml:"send_on_move_only"`
}

// LoadStatus reads and validates an oled-status config file.
func LoadStatus(path string) (StatusConfig, error) {
	var cfg StatusConfig
	if err := decodeFile(path, &cfg); err != nil {
		return StatusConfig{}, err
	}
	if err := DefaultAndValidateStatus(&cfg); err != nil {
		return StatusConfig{}, err
	}
	return cfg, nil
}

// LoadBeacon reads and validates a shari-aprs config file.
func LoadBeacon(path string) (BeaconConfig, error) {
	var cfg BeaconConfig
	if err := decodeFile(path, &cfg); err != nil {
		return BeaconConfig{}, err
	}
	if err := DefaultAndValidateBeacon(&cfg); err != nil {
		return BeaconConfig{}, err
	}
	return cfg, nil
}

func decodeFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file: every section falls back to defaults.
			return nil
		}
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return fmt.Errorf("config contains invalid fields: %s", strings.Join(te.Errors, "; "))
		}
		return err
	}
	return nil
}

func DefaultAndValidateStatus(cfg *StatusConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	d := &cfg.Display
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case "":
		d.Driver = "sh1106"
	case "sh1106", "ssd1306", "none":
	default:
		return fmt.Errorf("display.driver must be one of sh1106, ssd1306, none")
	}
	if strings.TrimSpace(d.I2CBus) == "" {
		d.I2CBus = "1"
	}
	if d.Address == 0 {
		d.Address = 0x3C
	}
	if d.Address > 0x7F {
		return fmt.Errorf("display.address must be a 7-bit i2c address")
	}
	if d.Rotate != 0 && d.Rotate != 2 {
		return fmt.Errorf("display.rotate must be 0 or 2")
	}
	d.Font = strings.ToLower(strings.TrimSpace(d.Font))
	switch d.Font {
	case "":
		d.Font = "7x13"
	case "7x13", "8x16":
	default:
		return fmt.Errorf("display.font must be 7x13 or 8x16")
	}
	if d.Refresh <= 0 {
		d.Refresh = 1 * time.Second
	}
	if d.PagePeriod <= 0 {
		d.PagePeriod = 5 * time.Second
	}
	if d.Contrast < 0 || d.Contrast > 255 {
		return fmt.Errorf("display.contrast must be between 0 and 255")
	}
	if d.LineHeight < 0 {
		return fmt.Errorf("display.line_height must be >= 0")
	}

	if len(cfg.Network.PreferredIfaces) == 0 {
		cfg.Network.PreferredIfaces = []string{"wlan0", "eth0"}
	}
	for i, name := range cfg.Network.PreferredIfaces {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("network.preferred_ifaces[%d] is empty", i)
		}
		// IFNAMSIZ - 1.
		if len(name) > 15 {
			return fmt.Errorf("network.preferred_ifaces[%d] is longer than 15 characters", i)
		}
		cfg.Network.PreferredIfaces[i] = name
	}

	if cfg.Button.Enable {
		if strings.TrimSpace(cfg.Button.Line) == "" {
			cfg.Button.Line = "GPIO17"
		}
		if cfg.Button.Debounce <= 0 {
			cfg.Button.Debounce = 50 * time.Millisecond
		}
	}

	return defaultAndValidateMQTT(&cfg.MQTT, "rpi-tools/status")
}

func DefaultAndValidateBeacon(cfg *BeaconConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	a := &cfg.APRS
	a.Callsign = strings.ToUpper(strings.TrimSpace(a.Callsign))
	if a.Callsign == "" {
		return fmt.Errorf("aprs.callsign is required")
	}
	if hasControlChars(a.Comment) {
		return fmt.Errorf("aprs.comment must not contain control characters")
	}
	if strings.TrimSpace(a.Server) == "" {
		a.Server = "rotate.aprs2.net"
	}
	if a.Port == 0 {
		a.Port = 14580
	}
	if a.Port < 0 || a.Port > 65535 {
		return fmt.Errorf("aprs.port must be between 1 and 65535")
	}
	if a.SymbolTable == "" {
		a.SymbolTable = "/"
	}
	if len(a.SymbolTable) != 1 {
		return fmt.Errorf("aprs.symbol_table must be a single character")
	}
	if a.Symbol == "" {
		a.Symbol = ">"
	}
	if len(a.Symbol) != 1 {
		return fmt.Errorf("aprs.symbol must be a single character")
	}
	a.Transport = strings.ToLower(strings.TrimSpace(a.Transport))
	switch a.Transport {
	case "":
		a.Transport = "tcp"
	case "tcp", "command":
	default:
		return fmt.Errorf("aprs.transport must be tcp or command")
	}
	if strings.TrimSpace(a.RelayCmd) == "" {
		a.RelayCmd = "ncat --send-only {server} {port}"
	}
	if a.Timeout <= 0 {
		a.Timeout = 10 * time.Second
	}

	g := &cfg.GPS
	g.Source = strings.ToLower(strings.TrimSpace(g.Source))
	switch g.Source {
	case "usb", "gpio", "serial":
		g.Source = "serial"
	case "gpsd", "config":
	case "":
		return fmt.Errorf("gps.source is required")
	default:
		return fmt.Errorf("gps.source must be one of usb, gpio, serial, gpsd, config")
	}
	if g.Baud == 0 {
		g.Baud = 9600
	}
	if g.Baud < 0 {
		return fmt.Errorf("gps.baud must be > 0")
	}
	if g.Timeout <= 0 {
		g.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(g.GPSDAddr) == "" {
		g.GPSDAddr = "127.0.0.1:2947"
	}
	if g.Source == "config" {
		if g.Latitude == nil || g.Longitude == nil {
			return fmt.Errorf("gps.latitude and gps.longitude are required when gps.source is 'config'")
		}
		if *g.Latitude < -90 || *g.Latitude > 90 {
			return fmt.Errorf("gps.latitude must be between -90 and 90")
		}
		if *g.Longitude < -180 || *g.Longitude > 180 {
			return fmt.Errorf("gps.longitude must be between -180 and 180")
		}
	}

	if cfg.Beacon.Interval <= 0 {
		return fmt.Errorf("beacon.interval must be > 0")
	}

	return defaultAndValidateMQTT(&cfg.MQTT, "rpi-tools/aprs")
}

func defaultAndValidateMQTT(m *MQTTConfig, topic string) error {
	m.Broker = strings.TrimSpace(m.Broker)
	if m.Broker == "" {
		return nil
	}
	if strings.TrimSpace(m.Topic) == "" {
		m.Topic = topic
	}
	if m.QoS < 0 || m.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	return nil
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
