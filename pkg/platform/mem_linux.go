//go:build linux

package platform

import (
	"golang.org/x/sys/unix"
)

// GetMemoryInfo reports physical memory. Buffers count as available.
func GetMemoryInfo() (MemoryInfo, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return MemoryInfo{}, err
	}
	unit := uint64(si.Unit)
	return newMemoryInfo(
		uint64(si.Totalram)*unit,
		(uint64(si.Freeram)+uint64(si.Bufferram))*unit,
	), nil
}
