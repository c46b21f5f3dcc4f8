package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
)

// PluginManager keeps the registered plugins and which of them are installed
type PluginManager struct {
	mu        sync.RWMutex
	plugins   map[string]Plugin
	installed map[string]bool
	store     InstalledStore
}

// NewPluginManager creates a new plugin manager. store may be nil, in which
// case installation state lives only in memory.
func NewPluginManager(store InstalledStore) *PluginManager {
	return &PluginManager{
		plugins:   make(map[string]Plugin),
		installed: make(map[string]bool),
		store:     store,
	}
}

// LoadInstalled reads the persisted installation state
func (m *PluginManager) LoadInstalled(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	names, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load installed plugins: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.installed = make(map[string]bool, len(names))
	for _, name := range names {
		m.installed[name] = true
	}
	return nil
}

// Register registers a plugin
func (m *PluginManager) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("%w: plugin cannot be nil", shared.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := p.Descriptor().SystemName
	if name == "" {
		return fmt.Errorf("%w: plugin system name cannot be empty", shared.ErrInvalidInput)
	}

	if _, exists := m.plugins[name]; exists {
		return fmt.Errorf("%w: plugin '%s' already registered", shared.ErrAlreadyExists, name)
	}

	m.plugins[name] = p
	return nil
}

// GetPlugin returns a plugin by system name
func (m *PluginManager) GetPlugin(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.plugins[name]
	return p, exists
}

// FindPlugin returns the descriptor and installation state of a plugin
func (m *PluginManager) FindPlugin(name string) (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.plugins[name]
	if !exists {
		return Info{}, false
	}
	return Info{Descriptor: p.Descriptor(), Installed: m.installed[name]}, true
}

// IsInstalled reports whether the plugin is registered and installed
func (m *PluginManager) IsInstalled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.plugins[name]
	return exists && m.installed[name]
}

// ListPlugins returns all registered plugins ordered by display order, then system name
func (m *PluginManager) ListPlugins() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, 0, len(m.plugins))
	for name, p := range m.plugins {
		infos = append(infos, Info{Descriptor: p.Descriptor(), Installed: m.installed[name]})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].DisplayOrder != infos[j].DisplayOrder {
			return infos[i].DisplayOrder < infos[j].DisplayOrder
		}
		return infos[i].SystemName < infos[j].SystemName
	})
	return infos
}

// Install runs the plugin's install hook and persists the new state
func (m *PluginManager) Install(ctx context.Context, name string) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}
	if m.IsInstalled(name) {
		return fmt.Errorf("%w: plugin '%s' is already installed", shared.ErrInvalidState, name)
	}

	if err := p.Install(ctx); err != nil {
		return fmt.Errorf("failed to install plugin '%s': %w", name, err)
	}

	return m.setInstalled(ctx, name, true)
}

// Uninstall runs the plugin's uninstall hook and persists the new state
func (m *PluginManager) Uninstall(ctx context.Context, name string) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}
	if !m.IsInstalled(name) {
		return fmt.Errorf("%w: plugin '%s' is not installed", shared.ErrInvalidState, name)
	}

	if err := p.Uninstall(ctx); err != nil {
		return fmt.Errorf("failed to uninstall plugin '%s': %w", name, err)
	}

	return m.setInstalled(ctx, name, false)
}

// Unregister removes a plugin (useful for testing)
func (m *PluginManager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plugins[name]; !exists {
		return fmt.Errorf("%w: plugin '%s' not found", shared.ErrNotFound, name)
	}

	delete(m.plugins, name)
	return nil
}

// Count returns the number of registered plugins
func (m *PluginManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}

func (m *PluginManager) lookup(name string) (Plugin, error) {
	p, ok := m.GetPlugin(name)
	if !ok {
		return nil, fmt.Errorf("%w: plugin '%s' not found", shared.ErrNotFound, name)
	}
	return p, nil
}

func (m *PluginManager) setInstalled(ctx context.Context, name string, installed bool) error {
	m.mu.Lock()
	if installed {
		m.installed[name] = true
	} else {
		delete(m.installed, name)
	}
	names := make([]string, 0, len(m.installed))
	for n := range m.installed {
		names = append(names, n)
	}
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	sort.Strings(names)
	if err := m.store.Save(ctx, names); err != nil {
		return fmt.Errorf("failed to save installed plugins: %w", err)
	}
	return nil
}

// InstalledOfType returns the installed plugins implementing T, ordered by
// display order. If systemName is not empty only that plugin is considered.
func InstalledOfType[T Plugin](m *PluginManager, systemName string) []T {
	var result []T
	for _, info := range m.ListPlugins() {
		if !info.Installed {
			continue
		}
		if systemName != "" && info.SystemName != systemName {
			continue
		}
		p, _ := m.GetPlugin(info.SystemName)
		if typed, ok := p.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}
