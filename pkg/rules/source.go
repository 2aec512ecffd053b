package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ruleFile is the YAML shape of a standing rule file.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFile reads and validates a YAML rule file. Every rule must pass
// Validate; one bad rule fails the whole load so a standing file is
// never partially applied.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", filepath.Base(path), err)
	}

	seen := make(map[string]bool, len(file.Rules))
	for i := range file.Rules {
		rule := &file.Rules[i]
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule file %s: %w", filepath.Base(path), err)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("rule file %s: duplicate rule id %q", filepath.Base(path), rule.ID)
		}
		seen[rule.ID] = true
	}
	return file.Rules, nil
}

// Source holds the rule set loaded from a YAML file and keeps it fresh
// by watching the file for changes. Reload failures keep the previous
// rule set in place.
type Source struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.RWMutex
	rules []Rule

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSource loads the rule file once and returns a Source serving it.
func NewSource(path string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rules, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Source{
		path:     path,
		logger:   logger.With("component", "rules.source"),
		debounce: 100 * time.Millisecond,
		rules:    rules,
		stopCh:   make(chan struct{}),
	}, nil
}

// Rules returns the current rule set.
func (s *Source) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Watch reloads the rule set when the file changes. It blocks until the
// context is cancelled or Close is called. Editors that rename-replace
// are handled by watching the parent directory and filtering on the
// file name.
func (s *Source) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.logger.Info("rule file watcher started", "path", s.path)

	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-s.stopCh:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce bursts of events from a single save.
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(s.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			s.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			s.logger.Warn("rule file watcher error", "error", err)
		}
	}
}

func (s *Source) reload() {
	rules, err := LoadFile(s.path)
	if err != nil {
		s.logger.Error("rule file reload failed, keeping previous rules", "error", err)
		return
	}
	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()
	s.logger.Info("rule file reloaded", "rules", len(rules))
}

// Close stops a running Watch. Safe to call more than once.
func (s *Source) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
