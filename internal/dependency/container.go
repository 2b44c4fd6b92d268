// Package dependency wires the jarvis services using go.uber.org/dig.
package dependency

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/jarvis-assistant/jarvis/internal/agent"
	"github.com/jarvis-assistant/jarvis/internal/bus"
	"github.com/jarvis-assistant/jarvis/internal/calendar"
	"github.com/jarvis-assistant/jarvis/internal/config"
	"github.com/jarvis-assistant/jarvis/internal/httpapi"
	"github.com/jarvis-assistant/jarvis/internal/mcp"
	"github.com/jarvis-assistant/jarvis/internal/providers"
	"github.com/jarvis-assistant/jarvis/internal/schema"
	"github.com/jarvis-assistant/jarvis/internal/session"
	"github.com/jarvis-assistant/jarvis/internal/tools"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg      *config.Config
	provider schema.LLMProvider
	calendar *calendar.Store
	mcp      *mcp.Manager
	events   *bus.EventBus
	agent    *agent.Agent
	registry *session.MemoryRegistry
	sweeper  *session.Sweeper
	server   *httpapi.Server
}

func (c *Container) Config() *config.Config             { return c.cfg }
func (c *Container) Provider() schema.LLMProvider       { return c.provider }
func (c *Container) Calendar() *calendar.Store          { return c.calendar }
func (c *Container) MCP() *mcp.Manager                  { return c.mcp }
func (c *Container) Events() *bus.EventBus              { return c.events }
func (c *Container) Agent() *agent.Agent                { return c.agent }
func (c *Container) Registry() *session.MemoryRegistry { return c.registry }
func (c *Container) Sweeper() *session.Sweeper          { return c.sweeper }
func (c *Container) Server() *httpapi.Server            { return c.server }

// Close stops MCP server processes and the event bus.
func (c *Container) Close() {
	c.mcp.Close()
	_ = c.events.Close()
}

// LLMModel is a named string type so dig can distinguish the effective model
// name from plain strings.
type LLMModel string

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	for _, ctor := range []any{
		func() *config.Config { return cfg },
		newProvider,
		resolveLLMModel,
		newCalendarStore,
		newToolList,
		newMCPManager,
		newProfile,
		bus.NewEventBus,
		newAgent,
		newSessionFactory,
		newRegistry,
		newSweeper,
		newServer,
	} {
		if err := d.Provide(ctor); err != nil {
			return nil, errors.Wrap(err, "provide")
		}
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.LLMProvider,
		cal *calendar.Store,
		mgr *mcp.Manager,
		events *bus.EventBus,
		a *agent.Agent,
		reg *session.MemoryRegistry,
		sw *session.Sweeper,
		srv *httpapi.Server,
	) {
		result = &Container{
			cfg:      cfg,
			provider: provider,
			calendar: cal,
			mcp:      mgr,
			events:   events,
			agent:    a,
			registry: reg,
			sweeper:  sw,
			server:   srv,
		}
	})
	if err != nil {
		return nil, errors.Cause(dig.RootCause(err))
	}
	return result, nil
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	model := cfg.Agents.Defaults.Model
	if cfg.MatchProvider(model).Provider == nil {
		return nil, errors.Errorf("no API key configured for model %q; set GEMINI_API_KEY or edit %s", model, config.ConfigPath())
	}
	return providers.New(cfg.ProviderParams()), nil
}

func resolveLLMModel(cfg *config.Config, p schema.LLMProvider) LLMModel {
	m := cfg.Agents.Defaults.Model
	if m == "" {
		m = p.DefaultModel()
	}
	return LLMModel(m)
}

func newCalendarStore(cfg *config.Config) *calendar.Store {
	return calendar.NewStore(cfg.CalendarPath())
}

func newToolList(cfg *config.Config, cal *calendar.Store) *tools.ToolList {
	return tools.NewDefaultToolList(tools.Options{
		Workspace:           cfg.WorkspacePath(),
		RestrictToWorkspace: cfg.Tools.RestrictToWorkspace,
		Calendar:            cal,
		WebFetchMaxChars:    cfg.Tools.Web.Fetch.MaxChars,
	})
}

func newMCPManager(cfg *config.Config) *mcp.Manager {
	return mcp.NewManager(cfg.MCPServers())
}

func newProfile(cfg *config.Config) agent.Profile {
	return agent.LoadProfile(cfg.ProfilePath())
}

func newAgent(
	cfg *config.Config,
	p schema.LLMProvider,
	tls *tools.ToolList,
	prof agent.Profile,
	mgr *mcp.Manager,
	events *bus.EventBus,
) *agent.Agent {
	return agent.New(p, tls, prof, cfg.WorkspacePath(),
		agent.WithConnector(mgr),
		agent.WithPublisher(events),
	)
}

func newSessionFactory(cfg *config.Config, m LLMModel, prof agent.Profile) *agent.SessionFactory {
	d := cfg.Agents.Defaults
	settings := schema.NewAgentSettings(string(m), d.MaxToolIter, d.Temperature, d.MaxTokens, d.HistoryWindow)
	return agent.NewSessionFactory(settings, prof)
}

func newRegistry(cfg *config.Config, f *agent.SessionFactory) *session.MemoryRegistry {
	return session.NewRegistry(f,
		session.WithTTL(time.Duration(cfg.Sessions.TTLMinutes)*time.Minute),
		session.WithMaxEntries(cfg.Sessions.MaxEntries),
	)
}

func newSweeper(cfg *config.Config, reg *session.MemoryRegistry) (*session.Sweeper, error) {
	return session.NewSweeper(reg, cfg.Sessions.SweepSchedule)
}

func newServer(cfg *config.Config, reg *session.MemoryRegistry, a *agent.Agent, events *bus.EventBus) *httpapi.Server {
	return httpapi.NewServer(reg, a,
		httpapi.WithEvents(events),
		httpapi.WithTurnTimeout(time.Duration(cfg.Server.TurnTimeout)*time.Second),
		httpapi.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)
}
