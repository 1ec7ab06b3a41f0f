// Package beacon periodically turns the current GPS fix into an APRS
// position report and uplinks it.
package beacon

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"rpi-tools/internal/aprs"
	"rpi-tools/internal/gps"
)

type FixSource interface {
	Fix(now time.Time) gps.Fix
}

type Sender interface {
	Send(ctx context.Context, packet string) error
}

type Config struct {
	Interval       time.Duration
	SendOnMoveOnly bool

	// Station carries the callsign, symbol and comment. Position and
	// motion fields are filled in from each fix.
	Station aprs.Position
}

// Outcome of one beacon attempt.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeNoFix   Outcome = "no_fix"
	OutcomeFailed  Outcome = "failed"
)

type Snapshot struct {
	LastOutcome Outcome  `json:"last_outcome,omitempty"`
	LastFix     *gps.Fix `json:"last_fix,omitempty"`
	LastPacket  string   `json:"last_packet,omitempty"`
	LastSentUTC string   `json:"last_sent_utc,omitempty"`

	Sent    uint64 `json:"sent"`
	Skipped uint64 `json:"skipped"`
	NoFix   uint64 `json:"no_fix"`
	Failed  uint64 `json:"failed"`

	LastError string `json:"last_error,omitempty"`
}

type Service struct {
	cfg    Config
	src    FixSource
	sender Sender
	now    func() time.Time

	onUpdate func(Snapshot)

	mu      sync.Mutex
	snap    Snapshot
	sentPos bool
	sentLat float64
	sentLon float64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config, src FixSource, sender Sender) (*Service, error) {
	if src == nil || sender == nil {
		return nil, fmt.Errorf("beacon: fix source and sender are required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("beacon: interval must be > 0")
	}
	return &Service{cfg: cfg, src: src, sender: sender, now: time.Now}, nil
}

// OnUpdate registers a callback run after every attempt. Call before Start.
func (s *Service) OnUpdate(fn func(Snapshot)) { s.onUpdate = fn }

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("beacon service is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	log.Printf("beacon enabled call=%s interval=%s send_on_move_only=%t", s.cfg.Station.Source, s.cfg.Interval, s.cfg.SendOnMoveOnly)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.cfg.Interval)
		defer t.Stop()

		s.Once(runCtx)
		for {
			select {
			case <-runCtx.Done():
				return
			case <-t.C:
				s.Once(runCtx)
			}
		}
	}()
	return nil
}

// Once makes a single beacon attempt.
func (s *Service) Once(ctx context.Context) Outcome {
	fix := s.src.Fix(s.now())
	if fix.Stale || !fix.Complete() {
		log.Printf("beacon: no valid gps data valid=%t stale=%t", fix.Valid, fix.Stale)
		return s.record(OutcomeNoFix, nil, "", nil)
	}

	s.mu.Lock()
	unchanged := s.sentPos && s.sentLat == fix.LatDeg && s.sentLon == fix.LonDeg
	s.mu.Unlock()
	if s.cfg.SendOnMoveOnly && unchanged {
		log.Printf("beacon: position unchanged, not sending lat=%.5f lon=%.5f", fix.LatDeg, fix.LonDeg)
		return s.record(OutcomeSkipped, &fix, "", nil)
	}

	pos := s.cfg.Station
	pos.LatDeg = fix.LatDeg
	pos.LonDeg = fix.LonDeg
	pos.AltM = *fix.AltM
	pos.SpeedKmh = *fix.SpeedKmh
	if err := pos.Validate(); err != nil {
		log.Printf("beacon: invalid position report: %v", err)
		return s.record(OutcomeFailed, &fix, "", err)
	}
	packet := pos.Packet()

	if err := s.sender.Send(ctx, packet); err != nil {
		log.Printf("beacon: send failed: %v", err)
		return s.record(OutcomeFailed, &fix, packet, err)
	}

	log.Printf("beacon sent lat=%s lon=%s alt_m=%.2f speed_kmh=%.2f",
		aprs.FormatLatitude(fix.LatDeg), aprs.FormatLongitude(fix.LonDeg), pos.AltM, pos.SpeedKmh)
	s.mu.Lock()
	s.sentPos = true
	s.sentLat = fix.LatDeg
	s.sentLon = fix.LonDeg
	s.mu.Unlock()
	return s.record(OutcomeSent, &fix, packet, nil)
}

func (s *Service) record(o Outcome, fix *gps.Fix, packet string, err error) Outcome {
	s.mu.Lock()
	s.snap.LastOutcome = o
	if fix != nil {
		f := *fix
		s.snap.LastFix = &f
	}
	if packet != "" {
		s.snap.LastPacket = packet
	}
	switch o {
	case OutcomeSent:
		s.snap.Sent++
		s.snap.LastSentUTC = s.now().UTC().Format(time.RFC3339Nano)
		s.snap.LastError = ""
	case OutcomeSkipped:
		s.snap.Skipped++
	case OutcomeNoFix:
		s.snap.NoFix++
		s.snap.LastError = "no valid gps data"
	case OutcomeFailed:
		s.snap.Failed++
	}
	if err != nil {
		s.snap.LastError = err.Error()
	}
	snap := s.snap
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(snap)
	}
	return o
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
