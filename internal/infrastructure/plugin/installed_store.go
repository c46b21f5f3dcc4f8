package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	domainplugin "github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
)

// InstalledPluginsFilePath is where the installed plugin names are kept
const InstalledPluginsFilePath = "~/App_Data/installed_plugins.json"

// FileInstalledStore persists installed plugin system names as a JSON array
type FileInstalledStore struct {
	mu     sync.Mutex
	files  fileprovider.FileProvider
	path   string
	logger *zap.Logger
}

// NewFileInstalledStore creates a store backed by InstalledPluginsFilePath
func NewFileInstalledStore(files fileprovider.FileProvider, logger *zap.Logger) *FileInstalledStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileInstalledStore{
		files:  files,
		path:   files.MapPath(InstalledPluginsFilePath),
		logger: logger,
	}
}

// Load returns the installed system names. A missing or empty file means none.
func (s *FileInstalledStore) Load(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.files.FileExists(s.path) {
		return []string{}, nil
	}

	data, err := s.files.ReadAllBytes(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []string{}, nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return dedupe(names), nil
}

// Save replaces the stored system names
func (s *FileInstalledStore) Save(_ context.Context, systemNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(dedupe(systemNames), "", "  ")
	if err != nil {
		return err
	}
	if err := s.files.CreateDirectory(s.files.GetDirectoryName(s.path)); err != nil {
		return err
	}
	if err := s.files.WriteAllBytes(s.path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	s.logger.Debug("Installed plugins saved", zap.Strings("plugins", systemNames))
	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var _ domainplugin.InstalledStore = (*FileInstalledStore)(nil)
