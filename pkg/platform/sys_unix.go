//go:build linux || darwin || freebsd

package platform

import (
	"golang.org/x/sys/unix"
)

func kernelVersion() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(u.Release[:]), nil
}

// GetDiskUsage reports the volume holding path.
func GetDiskUsage(path string) (DiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return DiskUsage{}, err
	}
	bsize := uint64(st.Bsize)
	return newDiskUsage(path,
		uint64(st.Blocks)*bsize,
		uint64(st.Bfree)*bsize,
		uint64(st.Bavail)*bsize,
	), nil
}
