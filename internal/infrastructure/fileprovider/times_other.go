//go:build !linux

package fileprovider

import (
	"os"
	"time"
)

func creationTime(info os.FileInfo) time.Time {
	return info.ModTime()
}

func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
