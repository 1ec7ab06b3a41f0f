package aprs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
)

const (
	TransportTCP     = "tcp"
	TransportCommand = "command"
)

// Config describes how packets reach APRS-IS.
type Config struct {
	Callsign string
	Passcode string
	Server   string
	Port     int

	// Transport is tcp (direct connection) or command (pipe login and
	// packet into RelayCmd, e.g. "ncat --send-only {server} {port}").
	Transport string
	RelayCmd  string
	Timeout   time.Duration

	Software string
	Version  string
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// runFunc executes argv with stdin and returns its stderr.
type runFunc func(ctx context.Context, argv []string, stdin []byte) ([]byte, error)

// Uplink sends one position report per connection, the way ncat
// --send-only would.
type Uplink struct {
	cfg  Config
	argv []string

	dial dialFunc
	run  runFunc
}

func NewUplink(cfg Config) (*Uplink, error) {
	if err := ValidateCallsign(cfg.Callsign); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Passcode) == "" {
		return nil, fmt.Errorf("aprs: passcode is required")
	}
	if strings.TrimSpace(cfg.Server) == "" {
		return nil, fmt.Errorf("aprs: server is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("aprs: port %d out of range", cfg.Port)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Software == "" {
		cfg.Software = "shari-aprs"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	u := &Uplink{cfg: cfg}
	d := &net.Dialer{Timeout: cfg.Timeout}
	u.dial = d.DialContext
	u.run = runCommand

	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", TransportTCP:
		u.cfg.Transport = TransportTCP
	case TransportCommand:
		u.cfg.Transport = TransportCommand
		argv, err := relayArgv(cfg.RelayCmd, cfg.Server, cfg.Port)
		if err != nil {
			return nil, err
		}
		u.argv = argv
	default:
		return nil, fmt.Errorf("aprs: unknown transport %q", cfg.Transport)
	}
	return u, nil
}

// relayArgv splits the relay command shell-style and substitutes the
// {server} and {port} placeholders in every argument.
func relayArgv(tmpl, server string, port int) ([]string, error) {
	argv, err := shlex.Split(tmpl)
	if err != nil {
		return nil, fmt.Errorf("aprs: parse relay command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("aprs: relay command is empty")
	}
	r := strings.NewReplacer("{server}", server, "{port}", strconv.Itoa(port))
	for i := range argv {
		argv[i] = r.Replace(argv[i])
	}
	return argv, nil
}

func (u *Uplink) Addr() string {
	return net.JoinHostPort(u.cfg.Server, strconv.Itoa(u.cfg.Port))
}

func (u *Uplink) Transport() string { return u.cfg.Transport }

// payload is the login line followed by the packet, CRLF terminated.
func (u *Uplink) payload(packet string) []byte {
	login := LoginLine(u.cfg.Callsign, u.cfg.Passcode, u.cfg.Software, u.cfg.Version)
	return []byte(login + "\r\n" + packet + "\r\n")
}

// Send logs in and transmits packet, bounded by the configured timeout.
func (u *Uplink) Send(ctx context.Context, packet string) error {
	if u == nil {
		return fmt.Errorf("aprs: uplink is nil")
	}
	if strings.ContainsAny(packet, "\r\n") {
		return fmt.Errorf("aprs: packet must be a single line")
	}
	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	if u.cfg.Transport == TransportCommand {
		return u.sendCommand(ctx, packet)
	}
	return u.sendTCP(ctx, packet)
}

func (u *Uplink) sendTCP(ctx context.Context, packet string) error {
	addr := u.Addr()
	conn, err := u.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("aprs: dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if _, err := conn.Write(u.payload(packet)); err != nil {
		return fmt.Errorf("aprs: write %s: %w", addr, err)
	}
	return nil
}

func (u *Uplink) sendCommand(ctx context.Context, packet string) error {
	stderr, err := u.run(ctx, u.argv, u.payload(packet))
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("aprs: relay %s timed out", u.argv[0])
		}
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return fmt.Errorf("aprs: relay %s failed: %v: %s", u.argv[0], err, msg)
		}
		return fmt.Errorf("aprs: relay %s failed: %w", u.argv[0], err)
	}
	return nil
}

func runCommand(ctx context.Context, argv []string, stdin []byte) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
