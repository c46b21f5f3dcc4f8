package fileprovider

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Ensure LocalFileProvider implements FileProvider
var _ FileProvider = (*LocalFileProvider)(nil)

// LocalFileProvider is a FileProvider backed by the local file system.
type LocalFileProvider struct {
	root string
}

// NewLocalFileProvider creates a provider rooted at contentRoot.
// An empty root means the current working directory.
func NewLocalFileProvider(contentRoot string) *LocalFileProvider {
	if contentRoot == "" {
		contentRoot = "."
	}
	root, err := filepath.Abs(contentRoot)
	if err != nil {
		root = filepath.Clean(contentRoot)
	}
	return &LocalFileProvider{root: root}
}

// Root returns the absolute content root
func (p *LocalFileProvider) Root() string {
	return p.root
}

// Combine joins path elements. An absolute element discards everything before it.
func (p *LocalFileProvider) Combine(paths ...string) string {
	var result string
	for _, part := range paths {
		if part == "" {
			continue
		}
		if filepath.IsAbs(part) {
			result = part
			continue
		}
		result = filepath.Join(result, part)
	}
	return result
}

// GetAbsolutePath combines the paths and prefixes the content root when needed
func (p *LocalFileProvider) GetAbsolutePath(paths ...string) string {
	all := make([]string, 0, len(paths)+1)
	if len(paths) == 0 || !strings.HasPrefix(paths[0], p.root) {
		all = append(all, p.root)
	}
	all = append(all, paths...)
	return p.Combine(all...)
}

// MapPath maps a virtual path such as "~/App_Data/file.json" to a physical path under the root
func (p *LocalFileProvider) MapPath(path string) string {
	path = strings.TrimPrefix(path, "~")
	path = strings.TrimLeft(path, `/\`)
	path = strings.ReplaceAll(path, `\`, "/")
	return filepath.Join(p.root, filepath.FromSlash(path))
}

func (p *LocalFileProvider) GetDirectoryName(path string) string {
	return filepath.Dir(path)
}

// GetDirectoryNameOnly returns the last element of a directory path
func (p *LocalFileProvider) GetDirectoryNameOnly(path string) string {
	return filepath.Base(filepath.Clean(path))
}

func (p *LocalFileProvider) GetParentDirectory(directoryPath string) string {
	return filepath.Dir(filepath.Clean(directoryPath))
}

// CreateDirectory creates the directory and its parents if it does not already exist
func (p *LocalFileProvider) CreateDirectory(path string) error {
	if p.DirectoryExists(path) {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// DeleteDirectory removes a directory recursively, clearing read-only permissions first.
// Missing directories are ignored.
func (p *LocalFileProvider) DeleteDirectory(path string) error {
	if path == "" {
		return errors.New("directory path is required")
	}
	if !p.DirectoryExists(path) {
		return nil
	}

	err := filepath.WalkDir(path, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		mode := os.FileMode(0o644)
		if d.IsDir() {
			mode = 0o755
		}
		return os.Chmod(current, mode)
	})
	if err != nil {
		return fmt.Errorf("failed to prepare directory %s for removal: %w", path, err)
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete directory %s: %w", path, err)
	}
	return nil
}

func (p *LocalFileProvider) DirectoryExists(path string) bool {
	return p.IsDirectory(path)
}

// DirectoryMove renames a directory. The destination must not exist.
func (p *LocalFileProvider) DirectoryMove(sourceDirName, destDirName string) error {
	if !p.DirectoryExists(sourceDirName) {
		return fmt.Errorf("source directory %s: %w", sourceDirName, fs.ErrNotExist)
	}
	if _, err := os.Stat(destDirName); err == nil {
		return fmt.Errorf("destination %s: %w", destDirName, fs.ErrExist)
	}
	if err := os.Rename(sourceDirName, destDirName); err != nil {
		return fmt.Errorf("failed to move directory %s: %w", sourceDirName, err)
	}
	return nil
}

// GetDirectories returns sub-directories whose names match searchPattern
func (p *LocalFileProvider) GetDirectories(path, searchPattern string, topDirectoryOnly bool) ([]string, error) {
	return p.collect(path, searchPattern, topDirectoryOnly, true)
}

func (p *LocalFileProvider) IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CreateFile creates an empty file, including any missing parent directories.
// Existing files are left untouched.
func (p *LocalFileProvider) CreateFile(path string) error {
	if p.FileExists(path) {
		return nil
	}
	if err := p.CreateDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return f.Close()
}

// DeleteFile removes a file. Missing files are ignored.
func (p *LocalFileProvider) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

func (p *LocalFileProvider) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnumerateFiles returns files whose names match searchPattern.
// An empty pattern matches every file.
func (p *LocalFileProvider) EnumerateFiles(directoryPath, searchPattern string, topDirectoryOnly bool) ([]string, error) {
	return p.collect(directoryPath, searchPattern, topDirectoryOnly, false)
}

func (p *LocalFileProvider) GetFiles(directoryPath, searchPattern string, topDirectoryOnly bool) ([]string, error) {
	return p.EnumerateFiles(directoryPath, searchPattern, topDirectoryOnly)
}

// FileCopy copies a file, refusing to replace an existing destination unless overwrite is set
func (p *LocalFileProvider) FileCopy(sourceFileName, destFileName string, overwrite bool) error {
	if !overwrite && p.FileExists(destFileName) {
		return fmt.Errorf("destination %s: %w", destFileName, fs.ErrExist)
	}

	src, err := os.Open(sourceFileName)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sourceFileName, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", sourceFileName, err)
	}

	dst, err := os.OpenFile(destFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destFileName, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to copy %s: %w", sourceFileName, err)
	}
	return dst.Close()
}

func (p *LocalFileProvider) FileMove(sourceFileName, destFileName string) error {
	if err := os.Rename(sourceFileName, destFileName); err != nil {
		return fmt.Errorf("failed to move file %s: %w", sourceFileName, err)
	}
	return nil
}

// FileLength returns the size in bytes, or -1 when the file does not exist
func (p *LocalFileProvider) FileLength(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return -1
	}
	return info.Size()
}

// GetFileExtension returns the extension including the leading dot
func (p *LocalFileProvider) GetFileExtension(filePath string) string {
	return filepath.Ext(filePath)
}

func (p *LocalFileProvider) GetFileName(path string) string {
	return filepath.Base(path)
}

func (p *LocalFileProvider) GetFileNameWithoutExtension(filePath string) string {
	name := filepath.Base(filePath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (p *LocalFileProvider) GetCreationTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return creationTime(info), nil
}

func (p *LocalFileProvider) GetLastAccessTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return accessTime(info), nil
}

func (p *LocalFileProvider) GetLastWriteTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// SetLastWriteTimeUtc updates the modification time, keeping the access time
func (p *LocalFileProvider) SetLastWriteTimeUtc(path string, lastWriteTimeUtc time.Time) error {
	atime, err := p.GetLastAccessTime(path)
	if err != nil {
		return err
	}
	return os.Chtimes(path, atime, lastWriteTimeUtc.UTC())
}

func (p *LocalFileProvider) ReadAllBytes(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

func (p *LocalFileProvider) ReadAllText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteAllBytes writes data to the file, creating or truncating it
func (p *LocalFileProvider) WriteAllBytes(filePath string, data []byte) error {
	return os.WriteFile(filePath, data, 0o644)
}

func (p *LocalFileProvider) WriteAllText(path, contents string) error {
	return p.WriteAllBytes(path, []byte(contents))
}

func (p *LocalFileProvider) collect(root, pattern string, topOnly, dirs bool) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}

	var result []string
	match := func(path string, d fs.DirEntry) {
		if d.IsDir() != dirs {
			return
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			result = append(result, path)
		}
	}

	if topOnly {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			match(filepath.Join(root, e.Name()), e)
		}
		return result, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		match(path, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
