//go:build linux

package fileprovider

import (
	"os"
	"syscall"
	"time"
)

// Linux does not expose a birth time through stat, so the modification time is used.
func creationTime(info os.FileInfo) time.Time {
	return info.ModTime()
}

func accessTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Unix())
	}
	return info.ModTime()
}
