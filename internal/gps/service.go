package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	SourceSerial = "serial"
	SourceGPSD   = "gpsd"
	SourceConfig = "config"
)

// Config controls the GPS reader.
type Config struct {
	// Source is serial, gpsd or config. usb and gpio are accepted as
	// aliases for serial.
	Source string

	// Device is the serial port for Source=="serial". Empty auto-detects.
	Device string
	Baud   int

	// Timeout is the maximum fix age before Fix reports it stale.
	Timeout time.Duration

	GPSDAddr string

	// Fixed position for Source=="config".
	Latitude  *float64
	Longitude *float64
	AltitudeM float64
}

type Snapshot struct {
	Source   string `json:"source"`
	Device   string `json:"device,omitempty"`
	Baud     int    `json:"baud,omitempty"`
	GPSDAddr string `json:"gpsd_addr,omitempty"`

	Fix       Fix    `json:"fix"`
	Sentences uint64 `json:"sentences"`
	// Dropped counts lines that failed to parse (bad checksum, unknown
	// sentence type, malformed JSON).
	Dropped uint64 `json:"dropped"`

	LastFixUTC string `json:"last_fix_utc,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

type fixState struct {
	fix Fix
}

type Service struct {
	cfg    Config
	source string

	now      func() time.Time
	openPort func(device string, baud int) (io.ReadCloser, error)
	detect   func() string

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closer  io.Closer
	state   fixState
	device  string
	lastErr string

	sentences atomic.Uint64
	dropped   atomic.Uint64
}

func normalizeSource(src string) string {
	switch s := strings.ToLower(strings.TrimSpace(src)); s {
	case "", "usb", "gpio", "serial", "nmea":
		return SourceSerial
	default:
		return s
	}
}

func New(cfg Config) *Service {
	if cfg.Baud <= 0 {
		cfg.Baud = 9600
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.GPSDAddr) == "" {
		cfg.GPSDAddr = gpsdDefaultAddr
	}
	return &Service{
		cfg:      cfg,
		source:   normalizeSource(cfg.Source),
		now:      time.Now,
		openPort: openSerialPort,
		detect:   autoDetectDevice,
		device:   strings.TrimSpace(cfg.Device),
	}
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	switch s.source {
	case SourceConfig:
		if s.cfg.Latitude == nil || s.cfg.Longitude == nil {
			return fmt.Errorf("gps: fixed position requires latitude and longitude")
		}
		s.state.fix = Fix{
			Valid:    true,
			LatDeg:   *s.cfg.Latitude,
			LonDeg:   *s.cfg.Longitude,
			AltM:     f64p(s.cfg.AltitudeM),
			SpeedKmh: f64p(0),
			Time:     s.now().UTC(),
		}
		s.cancel = func() {}
		log.Printf("gps enabled source=config lat=%.5f lon=%.5f alt_m=%.1f", *s.cfg.Latitude, *s.cfg.Longitude, s.cfg.AltitudeM)
		return nil
	case SourceSerial, SourceGPSD:
	default:
		return fmt.Errorf("gps: unknown source %q", s.cfg.Source)
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if s.source == SourceGPSD {
			log.Printf("gps enabled source=gpsd addr=%s", s.cfg.GPSDAddr)
			s.runGPSD(childCtx)
			return
		}
		log.Printf("gps enabled source=serial device=%q baud=%d", s.cfg.Device, s.cfg.Baud)
		s.runSerial(childCtx)
	}()
	return nil
}

// runSerial keeps a serial port open, reopening it with capped exponential
// backoff when opening or reading fails (receiver unplugged, port renamed).
func (s *Service) runSerial(ctx context.Context) {
	s.reconnectLoop(ctx, func() (io.ReadCloser, error) {
		device := strings.TrimSpace(s.cfg.Device)
		if device == "" {
			device = s.detect()
			if device == "" {
				return nil, fmt.Errorf("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
			}
		}
		s.mu.Lock()
		s.device = device
		s.mu.Unlock()
		rc, err := s.openPort(device, s.cfg.Baud)
		if err != nil {
			return nil, fmt.Errorf("gps open failed device=%s baud=%d: %v", device, s.cfg.Baud, err)
		}
		return rc, nil
	}, s.applyNMEA)
}

func (s *Service) runGPSD(ctx context.Context) {
	s.reconnectLoop(ctx, func() (io.ReadCloser, error) {
		conn, err := dialGPSD(ctx, s.cfg.GPSDAddr)
		if err != nil {
			return nil, fmt.Errorf("gpsd dial failed addr=%s: %v", s.cfg.GPSDAddr, err)
		}
		if err := gpsdWatch(conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("gpsd watch failed: %v", err)
		}
		return conn, nil
	}, s.applyGPSD)
}

func (s *Service) reconnectLoop(ctx context.Context, open func() (io.ReadCloser, error), apply func(time.Time, string) (bool, error)) {
	const (
		minBackoff = 250 * time.Millisecond
		maxBackoff = 10 * time.Second
	)
	backoff := minBackoff

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rc, err := open()
		if err != nil {
			s.setError(err.Error())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
			continue
		}
		backoff = minBackoff

		s.mu.Lock()
		if ctx.Err() != nil {
			s.mu.Unlock()
			_ = rc.Close()
			return
		}
		// Close() interrupts a blocked read by closing the active reader.
		s.closer = rc
		s.mu.Unlock()
		s.clearError()

		err = s.readLines(ctx, rc, apply)
		_ = rc.Close()
		s.mu.Lock()
		s.closer = nil
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		s.setError(fmt.Sprintf("gps read stopped: %v", err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// readLines feeds r line by line into apply until EOF, a read error or ctx
// cancellation.
func (s *Service) readLines(ctx context.Context, r io.Reader, apply func(time.Time, string) (bool, error)) error {
	sc := bufio.NewScanner(r)
	// NMEA sentences are at most 82 bytes; gpsd SKY reports can be large.
	sc.Buffer(make([]byte, 0, 4096), 256*1024)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		s.mu.Lock()
		_, err := apply(s.now().UTC(), line)
		s.mu.Unlock()
		if err != nil {
			// Line noise is common right after plug-in, and receivers emit
			// proprietary sentences ($PUBX...). Count and move on.
			s.dropped.Add(1)
			continue
		}
		s.sentences.Add(1)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

func (s *Service) applyNMEA(now time.Time, line string) (bool, error) {
	if !strings.HasPrefix(line, "$") {
		return false, nil
	}
	return s.state.applyNMEA(now, line)
}

func (s *Service) applyGPSD(now time.Time, line string) (bool, error) {
	return s.state.applyGPSD(now, line)
}

// Fix returns the latest fix, marked stale when it is older than the
// configured timeout. A fixed config position never goes stale.
func (s *Service) Fix(now time.Time) Fix {
	if s == nil {
		return Fix{}
	}
	s.mu.Lock()
	f := s.state.fix
	s.mu.Unlock()

	if s.source == SourceConfig {
		return f
	}
	if !f.Valid || f.Age(now) > s.cfg.Timeout {
		f.Stale = true
	}
	return f
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	f := s.Fix(s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Snapshot{
		Source:    s.source,
		Fix:       f,
		Sentences: s.sentences.Load(),
		Dropped:   s.dropped.Load(),
		LastError: s.lastErr,
	}
	switch s.source {
	case SourceSerial:
		out.Device = s.device
		out.Baud = s.cfg.Baud
	case SourceGPSD:
		out.GPSDAddr = s.cfg.GPSDAddr
	}
	if !f.Time.IsZero() {
		out.LastFixUTC = f.Time.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	changed := s.lastErr != msg
	s.lastErr = msg
	s.mu.Unlock()
	if changed {
		log.Printf("gps: %s", msg)
	}
}

func (s *Service) clearError() {
	s.mu.Lock()
	had := s.lastErr != ""
	s.lastErr = ""
	s.mu.Unlock()
	if had {
		log.Printf("gps: source connected")
	}
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	// Cancel under the lock so the reader either sees ctx done or has
	// already published its closer.
	if cancel != nil {
		cancel()
	}
	s.mu.Unlock()

	if closer != nil {
		_ = closer.Close()
	}
	s.wg.Wait()
}
