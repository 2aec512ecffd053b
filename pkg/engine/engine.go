package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"augur-hq/augur/pkg/analyzer"
	"augur-hq/augur/pkg/cache"
	"augur-hq/augur/pkg/config"
	"augur-hq/augur/pkg/events"
	"augur-hq/augur/pkg/learning"
	"augur-hq/augur/pkg/monitor"
	"augur-hq/augur/pkg/plugins"
	"augur-hq/augur/pkg/ratelimit"
	"augur-hq/augur/pkg/registry"
	"augur-hq/augur/pkg/rules"
	"augur-hq/augur/pkg/security"
	"augur-hq/augur/pkg/telemetry/metrics"
)

// Status is the engine's operational snapshot.
type Status struct {
	Initialized        bool             `json:"initialized"`
	Environment        string           `json:"environment"`
	PluginsLoaded      int              `json:"plugins_loaded"`
	CacheSize          int              `json:"cache_size"`
	LearningDataPoints int              `json:"learning_data_points"`
	RateLimit          ratelimit.Status `json:"rate_limit"`
}

// Engine orchestrates analysis requests across plugins, rules, cache,
// rate limiting and learning. All exported methods are safe for
// concurrent use.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger

	validator *security.Validator
	sandbox   *security.Sandbox
	registry  *registry.Registry
	router    *registry.Router
	cache     *cache.Cache
	limiter   *ratelimit.Limiter
	monitor   *monitor.Monitor
	bus       *events.Bus
	rules     *rules.Engine
	collector *metrics.Collector

	mu          sync.RWMutex
	initialized bool
	store       learning.Store
	pruner      *learning.Pruner
	source      *rules.Source
	watchCancel context.CancelFunc

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// New builds an engine from the given configuration. The configuration
// is validated here; Initialize must still be called before Analyze.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, analyzer.NewError(analyzer.CodeInvalidConfig, "engine", "configuration is nil")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, analyzer.WrapError(analyzer.CodeInvalidConfig, "engine", "invalid configuration", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	policy := cfg.Security.Policy()
	validator := security.NewValidator(policy, logger)

	e := &Engine{
		cfg:       cfg,
		logger:    logger.With("component", "engine"),
		validator: validator,
		sandbox:   security.NewSandbox(policy, logger),
		monitor:   monitor.New(monitor.Config{}, logger),
		bus:       events.NewBus(logger),
		rules:     rules.NewEngine(logger),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			Enabled:           cfg.RateLimiting.Enabled,
			RequestsPerMinute: cfg.RateLimiting.RequestsPerMinute,
			RequestsPerHour:   cfg.RateLimiting.RequestsPerHour,
		}),
		now: time.Now,
	}

	e.registry = registry.New(registry.Options{
		Validator: validator,
		Enforce:   cfg.IsProduction(),
		Logger:    logger,
	})
	e.router = registry.NewRouter(e.registry, e.invoke, logger)

	if cfg.Telemetry.MetricsEnabled {
		e.collector = metrics.NewCollector(nil)
	}

	if cfg.Caching.Enabled {
		e.cache = cache.New(cache.Config{
			Enabled:    true,
			TTL:        cfg.Caching.DefaultTTL,
			MaxEntries: cfg.Caching.MaxEntries,
			TypeTTLs:   typeTTLs(cfg.Caching),
		})
		if e.collector != nil {
			e.cache.SetEvictionHook(e.collector.RecordCacheEviction)
		}
	}

	return e, nil
}

// typeTTLs merges configured per-type TTLs over the domain defaults.
func typeTTLs(cfg config.CachingConfig) map[analyzer.AnalysisType]time.Duration {
	out := cache.DefaultTypeTTLs()
	for name, ttl := range cfg.TypeTTLs {
		if ttl > 0 {
			out[analyzer.AnalysisType(name)] = ttl
		}
	}
	return out
}

// Initialize loads the built-in plugins, opens the learning store,
// arms rule watching and event wiring, and sets the ready flag. A
// built-in plugin that cannot be loaded is fatal. Calling Initialize
// on an initialized engine is a no-op.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}

	// Core plugins and configured allowlist entries bypass the
	// untrusted-plugin manifest requirement and the sandbox.
	builtins := plugins.BuiltIns()
	for _, p := range builtins {
		e.validator.Trust(p.Name())
	}
	for _, name := range e.cfg.Security.TrustedPlugins {
		e.validator.Trust(name)
	}

	for _, p := range builtins {
		if err := e.registry.Load(p, nil); err != nil {
			return analyzer.WrapError(analyzer.CodePluginLoadFailed, "engine",
				fmt.Sprintf("built-in plugin %q failed to load", p.Name()), err)
		}
		e.publish(events.PluginLoaded, events.PluginLoadedPayload{
			Name:    p.Name(),
			Version: p.Version(),
			Trusted: true,
		})
	}

	store, err := e.openLearningStore()
	if err != nil {
		return err
	}
	e.store = store

	if e.cfg.Learning.RetentionDays > 0 && e.cfg.Learning.PruneSchedule != "" {
		e.pruner = learning.NewPruner(store, learning.RetentionConfig{
			RetentionDays: e.cfg.Learning.RetentionDays,
			Schedule:      e.cfg.Learning.PruneSchedule,
		}, e.logger)
		if err := e.pruner.Start(ctx); err != nil {
			return analyzer.WrapError(analyzer.CodeInvalidConfig, "engine", "retention scheduler failed to start", err)
		}
	}

	if e.cfg.Rules.File != "" {
		source, err := rules.NewSource(e.cfg.Rules.File, e.logger)
		if err != nil {
			return analyzer.WrapError(analyzer.CodeInvalidConfig, "engine", "rule file failed to load", err)
		}
		e.source = source
		if e.cfg.Features.RuleWatchingEnabled {
			watchCtx, cancel := context.WithCancel(context.Background())
			e.watchCancel = cancel
			// Watch blocks until cancelled, so it gets its own goroutine.
			go func() {
				if err := source.Watch(watchCtx); err != nil {
					e.logger.Error("rule file watcher stopped", "error", err)
				}
			}()
		}
	}

	if e.collector != nil {
		e.collector.SetPluginsLoaded(e.registry.Count())
	}

	e.initialized = true
	e.publish(events.EngineInitialized, events.EngineInitializedPayload{
		PluginsLoaded: e.registry.Count(),
		Environment:   e.cfg.Environment,
	})
	e.logger.Info("engine initialized",
		"environment", e.cfg.Environment,
		"plugins", e.registry.Count(),
		"learning_backend", e.cfg.Learning.Backend)
	return nil
}

func (e *Engine) openLearningStore() (learning.Store, error) {
	switch e.cfg.Learning.Backend {
	case "sqlite":
		store, err := learning.NewSQLiteStore(learning.SQLiteConfig{
			Path:       e.cfg.Learning.Path,
			MaxRecords: e.cfg.Learning.MaxRecords,
		})
		if err != nil {
			return nil, analyzer.WrapError(analyzer.CodeInvalidConfig, "engine", "learning store failed to open", err)
		}
		return store, nil
	default:
		return learning.NewMemoryStore(e.cfg.Learning.MaxRecords), nil
	}
}

// invoke is the router's invoker: trusted plugins run directly,
// everything else goes through the sandbox.
func (e *Engine) invoke(ctx context.Context, p analyzer.Plugin, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
	if e.validator.IsTrusted(p.Name()) {
		return p.Analyze(ctx, req)
	}
	result, _, err := e.sandbox.Execute(ctx, p, req)
	if err != nil {
		e.recordPluginFailure(p.Name(), err)
	}
	return result, err
}

func (e *Engine) recordPluginFailure(name string, err error) {
	stage := "execute"
	if e.collector != nil {
		if analyzer.CodeOf(err) == analyzer.CodeAnalysisTimeout {
			e.collector.RecordSandboxTimeout(name)
		}
		e.collector.RecordPluginError(name, stage)
	}
	e.publish(events.PluginError, events.PluginErrorPayload{
		Name:  name,
		Stage: stage,
		Error: err.Error(),
	})
}

// LoadPlugin validates and registers an additional plugin. In
// production the security validator's verdict is enforced; rejection
// returns an error and emits a plugin_error event.
func (e *Engine) LoadPlugin(p analyzer.Plugin, manifest *security.Manifest) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.registry.Load(p, manifest); err != nil {
		name := "<nil>"
		if p != nil {
			name = p.Name()
		}
		stage := "load"
		if analyzer.CodeOf(err) == analyzer.CodePluginValidationFailed {
			stage = "validate"
		}
		if e.collector != nil {
			e.collector.RecordPluginError(name, stage)
		}
		e.publish(events.PluginError, events.PluginErrorPayload{
			Name:  name,
			Stage: stage,
			Error: err.Error(),
		})
		return err
	}
	if e.collector != nil {
		e.collector.SetPluginsLoaded(e.registry.Count())
	}
	e.publish(events.PluginLoaded, events.PluginLoadedPayload{
		Name:    p.Name(),
		Version: p.Version(),
		Trusted: e.validator.IsTrusted(p.Name()),
	})
	return nil
}

// UnloadPlugin removes a plugin from the registry.
func (e *Engine) UnloadPlugin(name string) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.registry.Unload(name); err != nil {
		return err
	}
	if e.collector != nil {
		e.collector.SetPluginsLoaded(e.registry.Count())
	}
	return nil
}

// LoadedPlugins returns the loaded plugin names in load order.
func (e *Engine) LoadedPlugins() []string {
	return e.registry.Names()
}

// Subscribe attaches a handler to a lifecycle event type.
func (e *Engine) Subscribe(t events.Type, h events.Handler) events.Subscription {
	return e.bus.Subscribe(t, h)
}

// Unsubscribe detaches a previously registered handler.
func (e *Engine) Unsubscribe(sub events.Subscription) {
	e.bus.Unsubscribe(sub)
}

// Metrics returns the Prometheus collector, or nil when metrics are
// disabled. The host mounts collector.Handler() wherever it serves
// observability endpoints.
func (e *Engine) Metrics() *metrics.Collector {
	return e.collector
}

// Status returns an operational snapshot.
func (e *Engine) Status(ctx context.Context) Status {
	e.mu.RLock()
	initialized := e.initialized
	store := e.store
	e.mu.RUnlock()

	s := Status{
		Initialized:   initialized,
		Environment:   e.cfg.Environment,
		PluginsLoaded: e.registry.Count(),
		RateLimit:     e.limiter.Status(),
	}
	if e.cache != nil {
		s.CacheSize = e.cache.Size()
	}
	if store != nil {
		if n, err := store.Count(ctx); err == nil {
			s.LearningDataPoints = n
		}
	}
	return s
}

// Report returns the performance monitor's human-readable summary.
func (e *Engine) Report() string {
	return e.monitor.Report()
}

// Shutdown flushes the cache, stops watchers, detaches all event
// listeners and clears the ready flag. It is idempotent.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return nil
	}
	e.initialized = false

	if e.watchCancel != nil {
		e.watchCancel()
		e.watchCancel = nil
	}
	if e.source != nil {
		e.source.Close()
		e.source = nil
	}
	if e.pruner != nil {
		e.pruner.Stop()
		e.pruner = nil
	}
	if e.cache != nil {
		e.cache.Clear()
		e.cache.Close()
	}
	var err error
	if e.store != nil {
		err = e.store.Close()
		e.store = nil
	}
	e.bus.Close()
	e.logger.Info("engine shut down")
	return err
}

func (e *Engine) requireInitialized() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.initialized {
		return analyzer.NewError(analyzer.CodeNotInitialized, "engine", "engine is not initialized").
			WithSuggestions("call Initialize before using the engine")
	}
	return nil
}

func (e *Engine) publish(t events.Type, payload any) {
	e.bus.Publish(events.Event{Type: t, Time: e.now(), Payload: payload})
}
