package plugin

import "context"

// Descriptor describes a plugin. SystemName is the stable identifier used
// for installation state and provider selection.
type Descriptor struct {
	SystemName   string `json:"system_name"`
	FriendlyName string `json:"friendly_name"`
	Group        string `json:"group"`
	Version      string `json:"version"`
	Author       string `json:"author"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

// Plugin is an optional module that can be installed and uninstalled at runtime.
type Plugin interface {
	Descriptor() Descriptor
	// Install creates the plugin's data and resources.
	Install(ctx context.Context) error
	// Uninstall removes everything Install created.
	Uninstall(ctx context.Context) error
	// ConfigurationPageURL returns the admin page for the plugin, or an
	// empty string when it has nothing to configure.
	ConfigurationPageURL(storeLocation string) string
}

// Info is a registered plugin together with its installation state.
type Info struct {
	Descriptor
	Installed bool `json:"installed"`
}

// BasePlugin can be embedded to get no-op lifecycle hooks.
type BasePlugin struct {
	PluginDescriptor Descriptor
}

// Descriptor returns the embedded descriptor.
func (p *BasePlugin) Descriptor() Descriptor {
	return p.PluginDescriptor
}

// Install does nothing.
func (p *BasePlugin) Install(context.Context) error { return nil }

// Uninstall does nothing.
func (p *BasePlugin) Uninstall(context.Context) error { return nil }

// ConfigurationPageURL returns an empty string.
func (p *BasePlugin) ConfigurationPageURL(string) string { return "" }

// InstalledStore persists the set of installed plugin system names.
type InstalledStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, systemNames []string) error
}
