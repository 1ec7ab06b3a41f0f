package screen

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"rpi-tools/internal/display"
	"rpi-tools/internal/netinfo"
	"rpi-tools/internal/sysinfo"
)

type Config struct {
	// Title overrides the hostname shown at the top of every page.
	Title           string
	PreferredIfaces []string
	Refresh         time.Duration
	PagePeriod      time.Duration
	Font            string
	LineHeight      int
}

type SysCollector interface {
	Collect() sysinfo.Snapshot
}

type NetCollector interface {
	Collect(ctx context.Context, preferred []string) netinfo.Status
}

type Snapshot struct {
	Page       string           `json:"page"`
	Lines      []string         `json:"lines"`
	Net        netinfo.Status   `json:"net"`
	Sys        sysinfo.Snapshot `json:"sys"`
	Frames     uint64           `json:"frames"`
	UpdatedUTC string           `json:"updated_utc,omitempty"`
	LastError  string           `json:"last_error,omitempty"`
}

// Service polls metrics every Refresh and renders the current page.
type Service struct {
	cfg    Config
	drawer display.Drawer
	canvas *display.Canvas
	sys    SysCollector
	net    NetCollector
	rot    *Rotator
	now    func() time.Time

	presses  <-chan struct{}
	onUpdate func(Snapshot)

	frames uint64
	last   atomic.Value // Snapshot

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config, drawer display.Drawer, sys SysCollector, net NetCollector) (*Service, error) {
	if drawer == nil {
		return nil, fmt.Errorf("screen: drawer is nil")
	}
	if sys == nil || net == nil {
		return nil, fmt.Errorf("screen: collectors are required")
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = 1 * time.Second
	}
	if cfg.PagePeriod <= 0 {
		cfg.PagePeriod = 5 * time.Second
	}
	face, err := display.Face(cfg.Font)
	if err != nil {
		return nil, err
	}
	s := &Service{
		cfg:    cfg,
		drawer: drawer,
		canvas: display.NewCanvas(drawer.Bounds(), face, cfg.LineHeight),
		sys:    sys,
		net:    net,
		now:    time.Now,
	}
	s.rot = NewRotator(pageCount, cfg.PagePeriod, s.now())
	s.last.Store(Snapshot{})
	return s, nil
}

// SetButton wires a channel of manual page advances. Call before Start.
func (s *Service) SetButton(presses <-chan struct{}) { s.presses = presses }

// OnUpdate registers a callback invoked after every refresh. Call before Start.
func (s *Service) OnUpdate(fn func(Snapshot)) { s.onUpdate = fn }

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("screen service is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	log.Printf("screen enabled refresh=%s page_period=%s columns=%d", s.cfg.Refresh, s.cfg.PagePeriod, s.canvas.Columns())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(runCtx)
	}()
	return nil
}

func (s *Service) run(ctx context.Context) {
	t := time.NewTicker(s.cfg.Refresh)
	defer t.Stop()

	s.refresh(ctx, s.rot.Current(s.now()))
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.refresh(ctx, s.rot.Current(s.now()))
		case _, ok := <-s.presses:
			if !ok {
				s.presses = nil
				continue
			}
			s.refresh(ctx, s.rot.Next(s.now()))
		}
	}
}

// refresh collects, renders and publishes one frame of page idx.
func (s *Service) refresh(ctx context.Context, idx int) Snapshot {
	now := s.now()
	sys := s.sys.Collect()
	net := s.net.Collect(ctx, s.cfg.PreferredIfaces)

	title := s.cfg.Title
	if title == "" {
		title = sys.Hostname
	}
	page := Page(idx)
	lines := Lines(page, Data{
		Title:   title,
		Now:     now,
		Net:     net,
		Sys:     sys,
		Columns: s.canvas.Columns(),
	})

	snap := Snapshot{
		Page:       page.String(),
		Lines:      lines,
		Net:        net,
		Sys:        sys,
		UpdatedUTC: now.UTC().Format(time.RFC3339Nano),
	}

	s.canvas.DrawLines(lines)
	if err := s.drawer.Draw(s.canvas.Frame()); err != nil {
		// Keep polling; transient I2C errors are common with long leads.
		prev := s.Snapshot()
		if prev.LastError != err.Error() {
			log.Printf("screen draw failed page=%s: %v", page, err)
		}
		snap.LastError = err.Error()
	} else {
		atomic.AddUint64(&s.frames, 1)
	}
	snap.Frames = atomic.LoadUint64(&s.frames)

	s.last.Store(snap)
	if s.onUpdate != nil {
		s.onUpdate(snap)
	}
	return snap
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
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
