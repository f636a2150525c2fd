// Package platform selects the operating-system target once at startup and
// keeps every per-OS table (adapters, scripts, temp paths) behind it.
package platform

import (
	"path/filepath"

	"github.com/user/cyberusb/pkg/sysexec"
	"github.com/user/cyberusb/pkg/wrappers"
)

// Target is the closed set of supported platforms: WindowsTarget and
// LinuxTarget. Callers switch on the concrete type only where a feature
// exists on one platform alone.
type Target interface {
	// OS is "windows" or "linux".
	OS() string
	// Distro names the flavour shown to the user ("windows", "linux", "kali", ...).
	Distro() string
	DriverSource(r sysexec.Runner) wrappers.Source
	ProcessSource(r sysexec.Runner) wrappers.Source
	// Scripts maps action names to script paths relative to the scripts root.
	Scripts() map[string]string
	TempDirs() []string
	CacheDirs() []string
	// Dependencies are the binaries the script dispatcher needs.
	Dependencies() []string
	// DiskRoot is the volume whose usage the cleanup report shows.
	DiskRoot() string

	target()
}

// WindowsTarget reads its paths from the environment it was detected with.
type WindowsTarget struct {
	Getenv func(string) string
}

func (WindowsTarget) OS() string     { return "windows" }
func (WindowsTarget) Distro() string { return "windows" }
func (WindowsTarget) target()        {}

func (WindowsTarget) DriverSource(r sysexec.Runner) wrappers.Source {
	return &wrappers.WindowsDriverSource{Runner: r}
}

func (WindowsTarget) ProcessSource(r sysexec.Runner) wrappers.Source {
	return &wrappers.WindowsProcessSource{Runner: r}
}

func (WindowsTarget) Scripts() map[string]string {
	return map[string]string{
		"cleanup":  "OS/Windows/Scripts/cleanup.ps1",
		"drivers":  "OS/Windows/Scripts/drivers.ps1",
		"updates":  "OS/Windows/Scripts/updates.ps1",
		"security": "OS/Windows/Scripts/security_audit.ps1",
	}
}

func (w WindowsTarget) env(key string) string {
	if w.Getenv == nil {
		return ""
	}
	return w.Getenv(key)
}

// join returns "" when base is unset so the entry gets dropped.
func join(base string, elem ...string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(append([]string{base}, elem...)...)
}

func (w WindowsTarget) TempDirs() []string {
	return compact([]string{
		w.env("TEMP"),
		w.env("TMP"),
		`C:\Windows\Temp`,
		join(w.env("LOCALAPPDATA"), "Temp"),
	})
}

func (w WindowsTarget) CacheDirs() []string {
	local := w.env("LOCALAPPDATA")
	return compact([]string{
		join(local, "Microsoft", "Windows", "INetCache"),
		join(local, "Google", "Chrome", "User Data", "Default", "Cache"),
		join(w.env("APPDATA"), "Mozilla", "Firefox", "Profiles"),
	})
}

func (WindowsTarget) Dependencies() []string { return []string{"powershell"} }

func (w WindowsTarget) DiskRoot() string {
	if drive := w.env("SystemDrive"); drive != "" {
		return drive + `\`
	}
	return `C:\`
}

// LinuxTarget covers Linux distributions; Kali is told apart by Name.
type LinuxTarget struct {
	// Name is "linux", "kali", or the GOOS of another Unix.
	Name string
	Home string
}

func (LinuxTarget) OS() string { return "linux" }
func (LinuxTarget) target()    {}

func (l LinuxTarget) Distro() string {
	if l.Name == "" {
		return "linux"
	}
	return l.Name
}

func (LinuxTarget) DriverSource(r sysexec.Runner) wrappers.Source {
	return &wrappers.LinuxModuleSource{Runner: r}
}

func (LinuxTarget) ProcessSource(r sysexec.Runner) wrappers.Source {
	return &wrappers.LinuxProcessSource{Runner: r}
}

func (LinuxTarget) Scripts() map[string]string {
	return map[string]string{
		"cleanup":     "OS/Linux/Scripts/cleanup.sh",
		"performance": "OS/Linux/Scripts/performance.sh",
		"security":    "OS/Linux/Scripts/security.sh",
		"network":     "OS/Linux/Scripts/network_scan.sh",
	}
}

func (l LinuxTarget) TempDirs() []string {
	return compact([]string{
		"/tmp",
		"/var/tmp",
		join(l.Home, ".cache"),
		join(l.Home, ".tmp"),
	})
}

func (l LinuxTarget) CacheDirs() []string {
	return compact([]string{
		join(l.Home, ".cache"),
		join(l.Home, ".thumbnails"),
		"/var/cache",
	})
}

func (LinuxTarget) Dependencies() []string { return []string{"bash"} }

func (LinuxTarget) DiskRoot() string { return "/" }

// compact drops empty and repeated entries, keeping first occurrences.
func compact(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
