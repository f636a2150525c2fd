package engine

import (
	"fmt"
	"sort"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with two decimals in binary units.
func FormatSize(bytes float64) string {
	for _, unit := range sizeUnits {
		if bytes < 1024.0 {
			return fmt.Sprintf("%.2f %s", bytes, unit)
		}
		bytes /= 1024.0
	}
	return fmt.Sprintf("%.2f PB", bytes)
}

// FileSize is a path and its size in bytes.
type FileSize struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// MB returns the size in mebibytes rounded to two decimals.
func (f FileSize) MB() float64 {
	mb := float64(f.Size) / (1024 * 1024)
	return float64(int64(mb*100+0.5)) / 100
}

// LargestFilesLimit is how many entries TopBySize keeps for cleanup reports.
const LargestFilesLimit = 10

// TopBySize sorts a copy of files descending by size, keeping input order for
// ties, and truncates it to n entries.
func TopBySize(files []FileSize, n int) []FileSize {
	out := append([]FileSize(nil), files...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Size > out[j].Size
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
