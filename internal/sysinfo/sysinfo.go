// Package sysinfo reads the handful of host health metrics shown on the
// status display: load, SoC temperature, uptime, memory and root disk usage.
package sysinfo

import (
	"fmt"
	"os"
	"time"

	"github.com/c9s/goprocinfo/linux"
)

// Paths locates the pseudo-files sysinfo reads. Tests point these at fixtures.
type Paths struct {
	LoadAvg  string
	Uptime   string
	MemInfo  string
	CPUTemp  string
	DiskRoot string
}

func DefaultPaths() Paths {
	return Paths{
		LoadAvg:  "/proc/loadavg",
		Uptime:   "/proc/uptime",
		MemInfo:  "/proc/meminfo",
		CPUTemp:  thermalZone0,
		DiskRoot: "/",
	}
}

// Usage is a used/total pair. Values are bytes.
type Usage struct {
	UsedBytes  uint64  `json:"used_bytes"`
	TotalBytes uint64  `json:"total_bytes"`
	Percent    float64 `json:"percent"`
}

// Snapshot holds one poll of host metrics. A nil pointer means the metric
// could not be read; Errors keeps the reason per metric.
type Snapshot struct {
	Hostname string         `json:"hostname,omitempty"`
	Load1    *float64       `json:"load1,omitempty"`
	CPUTempC *float64       `json:"cpu_temp_c,omitempty"`
	Uptime   *time.Duration `json:"uptime_ns,omitempty"`
	Mem      *Usage         `json:"mem,omitempty"`
	Disk     *Usage         `json:"disk,omitempty"`

	Errors map[string]string `json:"errors,omitempty"`
}

type Collector struct {
	paths    Paths
	hostname func() (string, error)
}

func NewCollector(paths Paths) *Collector {
	def := DefaultPaths()
	if paths.LoadAvg == "" {
		paths.LoadAvg = def.LoadAvg
	}
	if paths.Uptime == "" {
		paths.Uptime = def.Uptime
	}
	if paths.MemInfo == "" {
		paths.MemInfo = def.MemInfo
	}
	if paths.CPUTemp == "" {
		paths.CPUTemp = def.CPUTemp
	}
	if paths.DiskRoot == "" {
		paths.DiskRoot = def.DiskRoot
	}
	return &Collector{paths: paths, hostname: os.Hostname}
}

// Collect never fails as a whole; individual metrics degrade to unknown.
func (c *Collector) Collect() Snapshot {
	var snap Snapshot
	fail := func(metric string, err error) {
		if snap.Errors == nil {
			snap.Errors = map[string]string{}
		}
		snap.Errors[metric] = err.Error()
	}

	if h, err := c.hostname(); err == nil {
		snap.Hostname = h
	} else {
		fail("hostname", err)
	}
	if v, err := c.ReadLoad1(); err == nil {
		snap.Load1 = &v
	} else {
		fail("load", err)
	}
	if v, err := c.ReadCPUTempC(); err == nil {
		snap.CPUTempC = &v
	} else {
		fail("cpu_temp", err)
	}
	if v, err := c.ReadUptime(); err == nil {
		snap.Uptime = &v
	} else {
		fail("uptime", err)
	}
	if v, err := c.ReadMem(); err == nil {
		snap.Mem = &v
	} else {
		fail("mem", err)
	}
	if v, err := c.ReadDisk(); err == nil {
		snap.Disk = &v
	} else {
		fail("disk", err)
	}
	return snap
}

func (c *Collector) ReadLoad1() (float64, error) {
	la, err := linux.ReadLoadAvg(c.paths.LoadAvg)
	if err != nil {
		return 0, fmt.Errorf("read loadavg: %w", err)
	}
	return la.Last1Min, nil
}

func (c *Collector) ReadUptime() (time.Duration, error) {
	up, err := linux.ReadUptime(c.paths.Uptime)
	if err != nil {
		return 0, fmt.Errorf("read uptime: %w", err)
	}
	return time.Duration(up.Total * float64(time.Second)), nil
}

// ReadMem reports used = MemTotal - MemAvailable, which matches what free(1)
// calls "used" on current kernels.
func (c *Collector) ReadMem() (Usage, error) {
	mi, err := linux.ReadMemInfo(c.paths.MemInfo)
	if err != nil {
		return Usage{}, fmt.Errorf("read meminfo: %w", err)
	}
	if mi.MemTotal == 0 {
		return Usage{}, fmt.Errorf("read meminfo: MemTotal is zero")
	}
	usedKiB := uint64(0)
	if mi.MemAvailable < mi.MemTotal {
		usedKiB = mi.MemTotal - mi.MemAvailable
	}
	return newUsage(usedKiB*1024, mi.MemTotal*1024), nil
}

func (c *Collector) ReadDisk() (Usage, error) {
	d, err := linux.ReadDisk(c.paths.DiskRoot)
	if err != nil {
		return Usage{}, fmt.Errorf("statfs %s: %w", c.paths.DiskRoot, err)
	}
	return newUsage(d.Used, d.All), nil
}

func newUsage(used, total uint64) Usage {
	u := Usage{UsedBytes: used, TotalBytes: total}
	if total > 0 {
		u.Percent = float64(used) / float64(total) * 100
	}
	return u
}
