package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// Value groups
const (
	// ComponentGroup is the group ResolveAll reads from
	ComponentGroup = "components"
	// PluginGroup collects the plugins registered with the plugin manager
	PluginGroup = "plugins"
)

// ErrNoSatisfiableConstructor is returned by ResolveUnregistered
var ErrNoSatisfiableConstructor = errors.New("no constructor was found that had all the dependencies satisfied")

// Engine populates the dependency container from the registered components
// and runs the startup sequence
type Engine struct {
	cfg       *config.Config
	finder    TypeFinder
	logger    *zap.Logger
	container *dig.Container
	mapper    *Mapper
	startups  []Startup
	plugins   *plugin.PluginManager
}

// Option configures the engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine. Nothing is resolved until ConfigureServices.
func New(cfg *config.Config, finder TypeFinder, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		finder:    finder,
		logger:    zap.NewNop(),
		container: dig.New(),
		mapper:    NewMapper(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Container returns the dependency container
func (e *Engine) Container() *dig.Container {
	return e.container
}

// Mapper returns the mapper configured by the registered profiles
func (e *Engine) Mapper() *Mapper {
	return e.mapper
}

// ConfigureServices runs the startup sequence: startups, mapper profiles,
// dependency registrars and finally startup tasks.
func (e *Engine) ConfigureServices(ctx context.Context) error {
	c := e.container
	if err := c.Provide(func() *Engine { return e }); err != nil {
		return fmt.Errorf("failed to provide engine: %w", err)
	}
	if err := c.Provide(func() TypeFinder { return e.finder }); err != nil {
		return fmt.Errorf("failed to provide type finder: %w", err)
	}
	if err := c.Provide(func() *config.Config { return e.cfg }); err != nil {
		return fmt.Errorf("failed to provide config: %w", err)
	}
	if err := c.Provide(func() *zap.Logger { return e.logger }); err != nil {
		return fmt.Errorf("failed to provide logger: %w", err)
	}
	if err := c.Provide(func() *Mapper { return e.mapper }); err != nil {
		return fmt.Errorf("failed to provide mapper: %w", err)
	}

	startups, err := instancesOf[Startup](e, FindClassesOfType[Startup](e.finder), false)
	if err != nil {
		return err
	}
	e.startups = startups
	for _, s := range startups {
		if err := s.ConfigureServices(c, e.cfg); err != nil {
			return fmt.Errorf("failed to configure services for %T: %w", s, err)
		}
	}

	if err := e.loadPlugins(ctx); err != nil {
		return err
	}

	profiles, err := instancesOf[MapperProfile](e, FindClassesOfType[MapperProfile](e.finder), true)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		p.Configure(e.mapper)
	}

	registrars, err := instancesOf[DependencyRegistrar](e, FindClassesOfType[DependencyRegistrar](e.finder), false)
	if err != nil {
		return err
	}
	for _, r := range registrars {
		if err := r.Register(c, e.finder, e.cfg); err != nil {
			return fmt.Errorf("dependency registrar %T failed: %w", r, err)
		}
	}

	if e.cfg != nil && e.cfg.Plugins.IgnoreStartupTasks {
		e.logger.Info("Startup tasks are disabled")
		return nil
	}

	tasks, err := instancesOf[StartupTask](e, FindClassesOfType[StartupTask](e.finder), true)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := t.Execute(ctx); err != nil {
			return fmt.Errorf("startup task %T failed: %w", t, err)
		}
	}

	e.logger.Info("Engine configured",
		zap.Int("startups", len(startups)),
		zap.Int("mapper_profiles", len(profiles)),
		zap.Int("registrars", len(registrars)),
		zap.Int("startup_tasks", len(tasks)),
	)
	return nil
}

// ConfigureRequestPipeline lets every Startup add its middleware and routes
func (e *Engine) ConfigureRequestPipeline(r *gin.Engine) {
	for _, s := range e.startups {
		s.Configure(r)
	}
}

type pluginManagerParams struct {
	dig.In
	Manager *plugin.PluginManager `optional:"true"`
	Plugins []plugin.Plugin       `group:"plugins"`
}

// loadPlugins registers the plugins provided to PluginGroup with the plugin
// manager and reads which of them are installed. The manager's constructor
// must not depend on the group: plugins may depend on services that need
// the manager.
func (e *Engine) loadPlugins(ctx context.Context) error {
	var params pluginManagerParams
	if err := e.container.Invoke(func(p pluginManagerParams) { params = p }); err != nil {
		return fmt.Errorf("failed to resolve plugins: %w", err)
	}
	if params.Manager == nil {
		e.logger.Debug("No plugin manager registered, every plugin component is enabled")
		return nil
	}
	e.plugins = params.Manager

	for _, p := range params.Plugins {
		if err := e.plugins.Register(p); err != nil {
			return fmt.Errorf("failed to register plugin: %w", err)
		}
	}
	if err := e.plugins.LoadInstalled(ctx); err != nil {
		return err
	}
	e.logger.Info("Plugins loaded", zap.Int("count", e.plugins.Count()))
	return nil
}

// Plugins returns the plugin manager, or nil when none is registered
func (e *Engine) Plugins() *plugin.PluginManager {
	return e.plugins
}

// pluginEnabled reports whether components owned by systemName should run
func (e *Engine) pluginEnabled(systemName string) bool {
	if systemName == "" || e.plugins == nil {
		return true
	}
	info, ok := e.plugins.FindPlugin(systemName)
	if !ok {
		return true
	}
	return info.Installed
}

// instancesOf turns components into T values sorted by Order. Constructors
// are resolved against the container.
func instancesOf[T ordered](e *Engine, comps []Component, checkPlugin bool) ([]T, error) {
	out := make([]T, 0, len(comps))
	for _, comp := range comps {
		if checkPlugin && !e.pluginEnabled(comp.Plugin) {
			e.logger.Debug("Skipping component of uninstalled plugin",
				zap.String("component", comp.Name),
				zap.String("plugin", comp.Plugin),
			)
			continue
		}
		if v, ok := comp.Value.(T); ok {
			out = append(out, v)
			continue
		}
		v, err := ResolveUnregistered[T](e, comp.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to create component %q: %w", comp.Name, err)
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out, nil
}

// Resolve returns the registered T
func Resolve[T any](e *Engine) (T, error) {
	var out T
	err := e.container.Invoke(func(v T) { out = v })
	return out, err
}

type componentGroup[T any] struct {
	dig.In
	Items []T `group:"components"`
}

// ResolveAll returns every T provided to the component group
func ResolveAll[T any](e *Engine) ([]T, error) {
	var out []T
	err := e.container.Invoke(func(g componentGroup[T]) { out = g.Items })
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// ProvidePlugin provides ctor's result, a plugin.Plugin, to the plugin group
func ProvidePlugin(c *dig.Container, ctor any) error {
	return c.Provide(ctor, dig.Group(PluginGroup))
}

// ProvideComponent provides ctor's result to the component group
func ProvideComponent(c *dig.Container, ctor any) error {
	return c.Provide(ctor, dig.Group(ComponentGroup))
}

// ResolveUnregistered builds a T from the first constructor whose
// parameters can all be resolved. Constructors may return a trailing error.
func ResolveUnregistered[T any](e *Engine, ctors ...any) (T, error) {
	var zero T
	lastErr := errors.New("no constructors given")
	for i, ctor := range ctors {
		scope := e.container.Scope(fmt.Sprintf("unregistered-%d", i))
		v, err := invokeConstructor(scope, ctor)
		if err != nil {
			lastErr = err
			continue
		}
		typed, ok := v.(T)
		if !ok {
			lastErr = fmt.Errorf("constructor result %T is not a %s", v, reflect.TypeOf((*T)(nil)).Elem())
			continue
		}
		return typed, nil
	}
	return zero, fmt.Errorf("%w: %w", ErrNoSatisfiableConstructor, lastErr)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// invokeConstructor calls ctor with arguments resolved from scope and
// returns its first result
func invokeConstructor(scope *dig.Scope, ctor any) (any, error) {
	fv := reflect.ValueOf(ctor)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.NumOut() == 0 {
		return nil, fmt.Errorf("%T is not a constructor", ctor)
	}

	in := make([]reflect.Type, ft.NumIn())
	for i := range in {
		in[i] = ft.In(i)
	}

	var (
		result  any
		callErr error
	)
	wrapper := reflect.MakeFunc(reflect.FuncOf(in, nil, ft.IsVariadic()), func(args []reflect.Value) []reflect.Value {
		var out []reflect.Value
		if ft.IsVariadic() {
			out = fv.CallSlice(args)
		} else {
			out = fv.Call(args)
		}
		result = out[0].Interface()
		if last := out[len(out)-1]; ft.NumOut() > 1 && ft.Out(ft.NumOut()-1) == errorType && !last.IsNil() {
			callErr = last.Interface().(error)
		}
		return nil
	})

	if err := scope.Invoke(wrapper.Interface()); err != nil {
		return nil, err
	}
	if callErr != nil {
		return nil, callErr
	}
	return result, nil
}
