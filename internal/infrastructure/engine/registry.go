package engine

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
)

// Component is a registered engine component.
type Component struct {
	// Name identifies the component, conventionally "<package>.<Type>".
	// It is matched against the finder's skip pattern.
	Name string
	// Plugin is the system name of the owning plugin, empty for core components
	Plugin string
	// Value is either a component instance or a constructor function whose
	// parameters are resolved from the container
	Value any
}

// Registry holds the components known to the application. Packages add
// themselves from init().
type Registry struct {
	mu         sync.RWMutex
	components []Component
	names      map[string]struct{}
}

// Default is the process-wide registry
var Default = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds a component. Nil values and duplicate names are rejected.
func (r *Registry) Register(c Component) error {
	if c.Value == nil || isNilValue(c.Value) {
		return fmt.Errorf("%w: component %q has no value", shared.ErrInvalidInput, c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: component name cannot be empty", shared.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[c.Name]; exists {
		return fmt.Errorf("%w: component %q already registered", shared.ErrAlreadyExists, c.Name)
	}
	r.names[c.Name] = struct{}{}
	r.components = append(r.components, c)
	return nil
}

// MustRegister is Register for use in init(); it panics on error
func (r *Registry) MustRegister(c Component) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Components returns the registered components sorted by name
func (r *Registry) Components() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Component, len(r.components))
	copy(out, r.components)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Register adds a component to the Default registry, panicking on error
func Register(c Component) {
	Default.MustRegister(c)
}

// TypeFinder lists the components visible to the engine
type TypeFinder interface {
	Components() []Component
}

// RegistryTypeFinder exposes a registry minus the components whose name
// matches the skip pattern
type RegistryTypeFinder struct {
	registry *Registry
	skip     *regexp.Regexp
}

// NewTypeFinder creates a finder over registry. An empty skipPattern skips nothing.
func NewTypeFinder(registry *Registry, skipPattern string) (*RegistryTypeFinder, error) {
	f := &RegistryTypeFinder{registry: registry}
	if skipPattern != "" {
		re, err := regexp.Compile(skipPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern %q: %w", skipPattern, err)
		}
		f.skip = re
	}
	return f, nil
}

// Components returns the components that are not skipped
func (f *RegistryTypeFinder) Components() []Component {
	all := f.registry.Components()
	if f.skip == nil {
		return all
	}
	out := make([]Component, 0, len(all))
	for _, c := range all {
		if f.skip.MatchString(c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FindClassesOfType returns the components that are a T, or constructors
// whose first result is a T
func FindClassesOfType[T any](finder TypeFinder) []Component {
	target := reflect.TypeOf((*T)(nil)).Elem()

	var out []Component
	for _, c := range finder.Components() {
		if _, ok := c.Value.(T); ok {
			out = append(out, c)
			continue
		}
		t := reflect.TypeOf(c.Value)
		if t.Kind() == reflect.Func && t.NumOut() > 0 && produces(t.Out(0), target) {
			out = append(out, c)
		}
	}
	return out
}

func produces(out, target reflect.Type) bool {
	if target.Kind() == reflect.Interface {
		return out.Implements(target)
	}
	return out == target
}

func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
