//go:build !linux && !darwin && !freebsd && !windows

package platform

import (
	"errors"
	"runtime"
)

var errUnsupported = errors.New("not supported on " + runtime.GOOS)

func kernelVersion() (string, error) {
	return "", errUnsupported
}

// GetDiskUsage reports the volume holding path.
func GetDiskUsage(path string) (DiskUsage, error) {
	return DiskUsage{}, errUnsupported
}
