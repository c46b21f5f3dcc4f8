package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/infrastructure/config"
)

type recorder struct {
	calls []string
}

func (r *recorder) add(s string) { r.calls = append(r.calls, s) }

type greeter struct{ greeting string }

type testStartup struct {
	order int
	rec   *recorder
}

func (s *testStartup) Order() int { return s.order }

func (s *testStartup) ConfigureServices(c *dig.Container, _ *config.Config) error {
	s.rec.add("startup")
	if s.order != 0 {
		return nil
	}
	return c.Provide(func() *greeter { return &greeter{greeting: "hello"} })
}

func (s *testStartup) Configure(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

type testProfile struct{ rec *recorder }

func (p *testProfile) Order() int { return 0 }

func (p *testProfile) Configure(m *Mapper) {
	p.rec.add("profile")
	CreateMap(m, func(src *source, dst *target) error {
		dst.Label = "mapped:" + src.Name
		return nil
	})
}

type testRegistrar struct{ rec *recorder }

func (r *testRegistrar) Order() int { return 0 }

func (r *testRegistrar) Register(c *dig.Container, _ TypeFinder, _ *config.Config) error {
	r.rec.add("registrar")
	return ProvideComponent(c, func(g *greeter) fmt.Stringer { return stringer(g.greeting) })
}

type greetTask struct {
	g   *greeter
	rec *recorder
}

func (t *greetTask) Order() int { return 0 }

func (t *greetTask) Execute(context.Context) error {
	t.rec.add("task:" + t.g.greeting)
	return nil
}

type failingTask struct{}

func (failingTask) Order() int                    { return 10 }
func (failingTask) Execute(context.Context) error { return errors.New("boom") }

type stringer string

func (s stringer) String() string { return string(s) }

type fakePlugin struct {
	plugin.BasePlugin
}

func newFakePlugin(name string) *fakePlugin {
	return &fakePlugin{BasePlugin: plugin.BasePlugin{PluginDescriptor: plugin.Descriptor{SystemName: name}}}
}

func newTestEngine(t *testing.T, cfg *config.Config, comps ...Component) *Engine {
	t.Helper()
	reg := NewRegistry()
	for _, c := range comps {
		require.NoError(t, reg.Register(c))
	}
	finder, err := NewTypeFinder(reg, "")
	require.NoError(t, err)
	if cfg == nil {
		cfg = &config.Config{}
	}
	return New(cfg, finder)
}

func TestEngine_ConfigureServices(t *testing.T) {
	rec := &recorder{}
	e := newTestEngine(t, nil,
		Component{Name: "core.Startup", Value: &testStartup{rec: rec}},
		Component{Name: "core.Profile", Value: &testProfile{rec: rec}},
		Component{Name: "core.Registrar", Value: &testRegistrar{rec: rec}},
		Component{Name: "core.Task", Value: func(g *greeter) *greetTask { return &greetTask{g: g, rec: rec} }},
	)

	require.NoError(t, e.ConfigureServices(context.Background()))
	assert.Equal(t, []string{"startup", "profile", "registrar", "task:hello"}, rec.calls)

	g, err := Resolve[*greeter](e)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.greeting)

	all, err := ResolveAll[fmt.Stringer](e)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "hello", all[0].String())

	self, err := Resolve[*Engine](e)
	require.NoError(t, err)
	assert.Same(t, e, self)

	var dst target
	require.NoError(t, e.Mapper().Map(&source{Name: "x"}, &dst))
	assert.Equal(t, "mapped:x", dst.Label)
}

func TestEngine_StartupOrder(t *testing.T) {
	rec := &recorder{}
	late := &testStartup{order: 10, rec: &recorder{}}
	early := &testStartup{order: 0, rec: rec}
	e := newTestEngine(t, nil,
		Component{Name: "a.Late", Value: late},
		Component{Name: "b.Early", Value: early},
	)

	require.NoError(t, e.ConfigureServices(context.Background()))
	require.Len(t, e.startups, 2)
	assert.Same(t, early, e.startups[0])
	assert.Same(t, late, e.startups[1])
}

func TestEngine_TaskFailureAborts(t *testing.T) {
	e := newTestEngine(t, nil, Component{Name: "core.Failing", Value: failingTask{}})

	err := e.ConfigureServices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestEngine_IgnoreStartupTasks(t *testing.T) {
	cfg := &config.Config{Plugins: config.PluginsConfig{IgnoreStartupTasks: true}}
	e := newTestEngine(t, cfg, Component{Name: "core.Failing", Value: failingTask{}})

	assert.NoError(t, e.ConfigureServices(context.Background()))
}

func TestEngine_SkipsUninstalledPluginComponents(t *testing.T) {
	pm := plugin.NewPluginManager(nil)
	require.NoError(t, pm.Register(newFakePlugin("Misc.Installed")))
	require.NoError(t, pm.Register(newFakePlugin("Misc.Uninstalled")))
	require.NoError(t, pm.Install(context.Background(), "Misc.Installed"))

	rec := &recorder{}
	e := newTestEngine(t, nil,
		Component{Name: "core.Startup", Value: &testStartup{rec: &recorder{}}},
		Component{Name: "core.Plugins", Value: &pluginStartup{pm: pm}},
		Component{Name: "installed.Profile", Plugin: "Misc.Installed", Value: &testProfile{rec: rec}},
		Component{Name: "uninstalled.Task", Plugin: "Misc.Uninstalled", Value: failingTask{}},
	)

	require.NoError(t, e.ConfigureServices(context.Background()))
	assert.Equal(t, []string{"profile"}, rec.calls)
}

type pluginStartup struct{ pm *plugin.PluginManager }

func (s *pluginStartup) Order() int { return 1 }

func (s *pluginStartup) ConfigureServices(c *dig.Container, _ *config.Config) error {
	return c.Provide(func() *plugin.PluginManager { return s.pm })
}

func (s *pluginStartup) Configure(*gin.Engine) {}

type groupedPluginStartup struct{}

func (groupedPluginStartup) Order() int { return 1 }

func (groupedPluginStartup) ConfigureServices(c *dig.Container, _ *config.Config) error {
	if err := c.Provide(func() *plugin.PluginManager { return plugin.NewPluginManager(nil) }); err != nil {
		return err
	}
	return ProvidePlugin(c, func() plugin.Plugin { return newFakePlugin("Misc.Grouped") })
}

func (groupedPluginStartup) Configure(*gin.Engine) {}

func TestEngine_RegistersGroupedPlugins(t *testing.T) {
	e := newTestEngine(t, nil, Component{Name: "core.Plugins", Value: groupedPluginStartup{}})
	require.NoError(t, e.ConfigureServices(context.Background()))

	require.NotNil(t, e.Plugins())
	info, ok := e.Plugins().FindPlugin("Misc.Grouped")
	require.True(t, ok)
	assert.False(t, info.Installed)
}

func TestEngine_ConfigureRequestPipeline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := newTestEngine(t, nil, Component{Name: "core.Startup", Value: &testStartup{rec: &recorder{}}})
	require.NoError(t, e.ConfigureServices(context.Background()))

	r := gin.New()
	e.ConfigureRequestPipeline(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestResolve_Unregistered(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.ConfigureServices(context.Background()))

	_, err := Resolve[*greeter](e)
	assert.Error(t, err)

	all, err := ResolveAll[fmt.Stringer](e)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestResolveUnregistered(t *testing.T) {
	e := newTestEngine(t, &config.Config{App: config.AppConfig{Name: "shop"}})
	require.NoError(t, e.ConfigureServices(context.Background()))

	t.Run("first satisfiable constructor wins", func(t *testing.T) {
		v, err := ResolveUnregistered[fmt.Stringer](e,
			func(g *greeter) stringer { return stringer(g.greeting) },
			func(cfg *config.Config) stringer { return stringer(cfg.App.Name) },
		)
		require.NoError(t, err)
		assert.Equal(t, "shop", v.String())
	})

	t.Run("constructor error", func(t *testing.T) {
		_, err := ResolveUnregistered[fmt.Stringer](e,
			func(*config.Config) (stringer, error) { return "", errors.New("bad config") },
		)
		require.ErrorIs(t, err, ErrNoSatisfiableConstructor)
		assert.Contains(t, err.Error(), "bad config")
	})

	t.Run("nothing satisfiable", func(t *testing.T) {
		_, err := ResolveUnregistered[fmt.Stringer](e, func(g *greeter) stringer { return "" })
		assert.ErrorIs(t, err, ErrNoSatisfiableConstructor)
	})

	t.Run("wrong result type", func(t *testing.T) {
		_, err := ResolveUnregistered[fmt.Stringer](e, func() int { return 1 })
		assert.ErrorIs(t, err, ErrNoSatisfiableConstructor)
	})
}
