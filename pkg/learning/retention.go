package learning

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls scheduled pruning of the learning trace.
type RetentionConfig struct {
	// RetentionDays is the record age limit in days. 0 keeps records
	// forever (pruning disabled).
	RetentionDays int `json:"retention_days" yaml:"retention_days"`

	// Schedule is the cron expression driving pruning runs, e.g.
	// "0 3 * * *" for daily at 3 AM. Empty disables the scheduler.
	Schedule string `json:"schedule" yaml:"schedule"`
}

// Pruner trims aged records from a Store on a cron schedule.
type Pruner struct {
	store  Store
	config RetentionConfig
	cron   *cron.Cron
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
}

// NewPruner builds a Pruner over the given store.
func NewPruner(store Store, config RetentionConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: logger.With("component", "learning.pruner"),
		now:    time.Now,
	}
}

// Prune deletes records older than the retention period once,
// returning how many were removed. A zero retention period is a no-op.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
	deleted, err := p.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune learning records: %w", err)
	}
	if deleted > 0 {
		p.logger.Info("pruned learning records", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

// Start begins scheduled pruning. With no schedule configured it
// returns immediately without error. The scheduler stops when the
// context is cancelled or Stop is called.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.Schedule == "" || p.config.RetentionDays <= 0 {
		p.logger.Info("learning retention not configured, scheduler idle")
		return nil
	}
	if p.running {
		return fmt.Errorf("pruner already running")
	}

	if _, err := cron.ParseStandard(p.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.config.Schedule, err)
	}
	if _, err := p.cron.AddFunc(p.config.Schedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled pruning failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true
	p.logger.Info("learning retention scheduler started",
		"schedule", p.config.Schedule,
		"retention_days", p.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()
	return nil
}

// Stop halts the scheduler, waiting for a running prune to finish.
// Safe to call when not running.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	<-p.cron.Stop().Done()
	p.running = false
	p.logger.Info("learning retention scheduler stopped")
}

// NextRun returns the next scheduled pruning time, or the zero time
// when the scheduler is idle.
func (p *Pruner) NextRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return time.Time{}
	}
	entries := p.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
