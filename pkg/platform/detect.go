package platform

import (
	"os"
	"runtime"
	"strings"
)

// OSReleasePath is where Linux distributions describe themselves.
const OSReleasePath = "/etc/os-release"

// Detect picks the target for the running machine.
func Detect() Target {
	home, _ := os.UserHomeDir()
	var osRelease string
	if data, err := os.ReadFile(OSReleasePath); err == nil {
		osRelease = string(data)
	}
	return DetectFrom(runtime.GOOS, osRelease, home, os.Getenv)
}

// DetectFrom is Detect with its inputs made explicit. Non-Windows systems
// get a LinuxTarget; a Linux whose os-release mentions kali is named "kali".
func DetectFrom(goos, osRelease, home string, getenv func(string) string) Target {
	switch goos {
	case "windows":
		return WindowsTarget{Getenv: getenv}
	case "linux":
		name := "linux"
		if strings.Contains(strings.ToLower(osRelease), "kali") {
			name = "kali"
		}
		return LinuxTarget{Name: name, Home: home}
	default:
		return LinuxTarget{Name: goos, Home: home}
	}
}
