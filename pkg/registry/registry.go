package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"augur-hq/augur/pkg/analyzer"
	"augur-hq/augur/pkg/security"
)

// Registry stores loaded plugins keyed by name and preserves the order
// in which they were loaded. Routing iterates plugins in that order, so
// load order is the routing priority.
type Registry struct {
	mu        sync.RWMutex
	plugins   map[string]analyzer.Plugin
	order     []string
	validator *security.Validator
	enforce   bool
	logger    *slog.Logger
}

// Options configures a Registry.
type Options struct {
	// Validator screens plugins at load time. Required when Enforce is
	// set; optional otherwise.
	Validator *security.Validator

	// Enforce rejects plugins that fail validation. Outside production
	// a failed validation is logged but the plugin still loads.
	Enforce bool

	Logger *slog.Logger
}

// New returns an empty Registry.
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		plugins:   make(map[string]analyzer.Plugin),
		validator: opts.Validator,
		enforce:   opts.Enforce,
		logger:    logger.With("component", "registry"),
	}
}

// Load validates and registers a plugin. The manifest may be nil for
// plugins that do not ship one; validation then records a warning (or
// a violation when enforcement is on and the plugin is untrusted).
func (r *Registry) Load(p analyzer.Plugin, manifest *security.Manifest) error {
	if p == nil {
		return analyzer.NewError(analyzer.CodePluginLoadFailed, "registry", "cannot load nil plugin")
	}
	name := p.Name()
	if name == "" {
		return analyzer.NewError(analyzer.CodePluginLoadFailed, "registry", "plugin has no name")
	}

	if r.validator != nil {
		result := r.validator.ValidatePlugin(p, manifest)
		for _, w := range result.Warnings {
			r.logger.Warn("plugin validation warning", "plugin", name, "warning", w)
		}
		if !result.IsValid {
			for _, v := range result.Violations {
				r.logger.Error("plugin validation violation",
					"plugin", name, "code", v.Code, "severity", v.Severity, "message", v.Message)
			}
			if r.enforce {
				return analyzer.NewError(analyzer.CodePluginValidationFailed,
					"registry", fmt.Sprintf("plugin %q failed security validation", name)).
					WithSuggestions(
						"review the violation codes logged above",
						"add the plugin to the trusted set if it is a known-good source",
					)
			}
			r.logger.Warn("loading plugin despite failed validation (enforcement disabled)", "plugin", name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[name]; ok {
		return fmt.Errorf("registry: %w: %s", ErrPluginExists, name)
	}
	r.plugins[name] = p
	r.order = append(r.order, name)
	r.logger.Info("plugin loaded", "plugin", name, "version", p.Version())
	return nil
}

// Unload removes a plugin by name.
func (r *Registry) Unload(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[name]; !ok {
		return fmt.Errorf("registry: %w: %s", ErrPluginNotFound, name)
	}
	delete(r.plugins, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Info("plugin unloaded", "plugin", name)
	return nil
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (analyzer.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns plugin names in load order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of loaded plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Candidates returns, in load order, the plugins whose capability
// probe accepts the request's type and blockchain. Plugins that
// implement analyzer.RequestValidator and reject the request are
// skipped.
func (r *Registry) Candidates(req *analyzer.AnalysisRequest) []analyzer.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []analyzer.Plugin
	for _, name := range r.order {
		p := r.plugins[name]
		if !p.Supports(req.Type, req.Blockchain()) {
			continue
		}
		if rv, ok := p.(analyzer.RequestValidator); ok && !rv.ValidateRequest(req) {
			continue
		}
		out = append(out, p)
	}
	return out
}
