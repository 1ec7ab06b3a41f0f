package web

import (
	"sort"
	"sync"
	"time"
)

// Status aggregates the snapshots of the services running in one process.
type Status struct {
	service string
	version string
	start   time.Time

	mu      sync.RWMutex
	names   []string
	sources map[string]func() any
}

func NewStatus(service, version string) *Status {
	return &Status{
		service: service,
		version: version,
		start:   time.Now().UTC(),
		sources: map[string]func() any{},
	}
}

// Add registers a named section. fn is called on every status request and
// must be safe for concurrent use.
func (s *Status) Add(name string, fn func() any) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[name]; !ok {
		s.names = append(s.names, name)
		sort.Strings(s.names)
	}
	s.sources[name] = fn
}

type StatusSnapshot struct {
	Service   string         `json:"service"`
	Version   string         `json:"version,omitempty"`
	NowUTC    string         `json:"now_utc"`
	UptimeSec int64          `json:"uptime_sec"`
	Sections  map[string]any `json:"sections"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	s.mu.RLock()
	sections := make(map[string]any, len(s.names))
	for _, name := range s.names {
		sections[name] = s.sources[name]()
	}
	s.mu.RUnlock()

	return StatusSnapshot{
		Service:   s.service,
		Version:   s.version,
		NowUTC:    nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec: int64(nowUTC.Sub(s.start).Seconds()),
		Sections:  sections,
	}
}

func (s *Status) Service() string { return s.service }
func (s *Status) Version() string { return s.version }
