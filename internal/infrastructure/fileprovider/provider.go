// Package fileprovider provides a file system abstraction rooted at the application content root.
package fileprovider

import (
	"time"
)

// FileProvider abstracts file and directory access for the application.
// Relative paths passed to MapPath are resolved against the content root.
type FileProvider interface {
	Root() string

	Combine(paths ...string) string
	GetAbsolutePath(paths ...string) string
	MapPath(path string) string
	GetDirectoryName(path string) string
	GetDirectoryNameOnly(path string) string
	GetParentDirectory(directoryPath string) string

	CreateDirectory(path string) error
	DeleteDirectory(path string) error
	DirectoryExists(path string) bool
	DirectoryMove(sourceDirName, destDirName string) error
	GetDirectories(path, searchPattern string, topDirectoryOnly bool) ([]string, error)
	IsDirectory(path string) bool

	CreateFile(path string) error
	DeleteFile(path string) error
	FileExists(path string) bool
	EnumerateFiles(directoryPath, searchPattern string, topDirectoryOnly bool) ([]string, error)
	GetFiles(directoryPath, searchPattern string, topDirectoryOnly bool) ([]string, error)
	FileCopy(sourceFileName, destFileName string, overwrite bool) error
	FileMove(sourceFileName, destFileName string) error
	FileLength(path string) int64

	GetFileExtension(filePath string) string
	GetFileName(path string) string
	GetFileNameWithoutExtension(filePath string) string

	GetCreationTime(path string) (time.Time, error)
	GetLastAccessTime(path string) (time.Time, error)
	GetLastWriteTime(path string) (time.Time, error)
	SetLastWriteTimeUtc(path string, lastWriteTimeUtc time.Time) error

	ReadAllBytes(filePath string) ([]byte, error)
	ReadAllText(path string) (string, error)
	WriteAllBytes(filePath string, data []byte) error
	WriteAllText(path, contents string) error
}
