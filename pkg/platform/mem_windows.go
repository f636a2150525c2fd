//go:build windows

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// GetMemoryInfo reports physical memory.
func GetMemoryInfo() (MemoryInfo, error) {
	var m windows.MemoryStatusEx
	m.Length = uint32(unsafe.Sizeof(m))
	if err := windows.GlobalMemoryStatusEx(&m); err != nil {
		return MemoryInfo{}, err
	}
	return newMemoryInfo(m.TotalPhys, m.AvailPhys), nil
}
