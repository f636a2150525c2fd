//go:build !linux && !windows

package platform

import (
	"errors"
	"runtime"
)

func GetMemoryInfo() (MemoryInfo, error) {
	return MemoryInfo{}, errors.New("memory info not supported on " + runtime.GOOS)
}
