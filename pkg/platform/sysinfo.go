package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/sysexec"
)

// SystemInfo is the machine summary printed by the sysinfo command.
type SystemInfo struct {
	OS        string `json:"os"`
	Distro    string `json:"distro"`
	Kernel    string `json:"kernel"`
	Arch      string `json:"architecture"`
	CPUs      int    `json:"cpus"`
	Hostname  string `json:"hostname"`
	GoVersion string `json:"go_version"`

	Memory *MemoryInfo `json:"memory,omitempty"`
}

// CollectSystemInfo gathers SystemInfo for t. Fields that cannot be read are
// left as "unknown".
func CollectSystemInfo(t Target) SystemInfo {
	info := SystemInfo{
		OS:        t.OS(),
		Distro:    t.Distro(),
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		GoVersion: runtime.Version(),
		Kernel:    "unknown",
		Hostname:  "unknown",
	}
	if k, err := kernelVersion(); err == nil && k != "" {
		info.Kernel = k
	}
	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}
	if m, err := GetMemoryInfo(); err == nil {
		info.Memory = &m
	}
	return info
}

func (s SystemInfo) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("OS:           %s (%s)\n", s.OS, s.Distro))
	sb.WriteString(fmt.Sprintf("Kernel:       %s\n", s.Kernel))
	sb.WriteString(fmt.Sprintf("Architecture: %s\n", s.Arch))
	sb.WriteString(fmt.Sprintf("CPUs:         %d\n", s.CPUs))
	sb.WriteString(fmt.Sprintf("Hostname:     %s\n", s.Hostname))
	sb.WriteString(fmt.Sprintf("Go version:   %s\n", s.GoVersion))
	if s.Memory != nil {
		sb.WriteString(fmt.Sprintf("Memory:       %s\n", s.Memory))
	}
	return sb.String()
}

// MissingDependencies returns the target's required binaries that are not on PATH.
func MissingDependencies(t Target, r sysexec.Runner) []string {
	var missing []string
	for _, dep := range t.Dependencies() {
		if _, err := r.LookPath(dep); err != nil {
			missing = append(missing, dep)
		}
	}
	return missing
}

// DiskUsage describes one volume.
type DiskUsage struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	PercentUsed float64 `json:"percent_used"`
}

func newDiskUsage(path string, total, free, avail uint64) DiskUsage {
	d := DiskUsage{Path: path, Total: total, Used: total - free, Free: avail}
	if total > 0 {
		d.PercentUsed = float64(d.Used) / float64(total) * 100
	}
	return d
}

func (d DiskUsage) String() string {
	return fmt.Sprintf("Total: %s\nUsed: %s (%.1f%%)\nFree: %s",
		engine.FormatSize(float64(d.Total)),
		engine.FormatSize(float64(d.Used)), d.PercentUsed,
		engine.FormatSize(float64(d.Free)))
}

// MemoryInfo describes physical memory.
type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	PercentUsed float64 `json:"percent_used"`
}

func newMemoryInfo(total, avail uint64) MemoryInfo {
	if avail > total {
		avail = total
	}
	m := MemoryInfo{Total: total, Available: avail}
	if total > 0 {
		m.PercentUsed = float64(total-avail) / float64(total) * 100
	}
	return m
}

func (m MemoryInfo) String() string {
	return fmt.Sprintf("%s total, %s available (%.1f%% used)",
		engine.FormatSize(float64(m.Total)),
		engine.FormatSize(float64(m.Available)), m.PercentUsed)
}
