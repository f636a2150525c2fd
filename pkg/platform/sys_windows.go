//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func kernelVersion() (string, error) {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber), nil
}

// GetDiskUsage reports the volume holding path.
func GetDiskUsage(path string) (DiskUsage, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return DiskUsage{}, err
	}
	var avail, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(p, &avail, &total, &free); err != nil {
		return DiskUsage{}, err
	}
	return newDiskUsage(path, total, free, avail), nil
}
