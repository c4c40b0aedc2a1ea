package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PendingExporter exports a batch of not-yet-synced spend and reports how
// many records it handled.
type PendingExporter interface {
	ProcessPendingSpends(ctx context.Context) (int, error)
}

type SyncProcessorConfig struct {
	// PollInterval is how often to look for unsynced spend (default: 1m).
	PollInterval time.Duration
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{PollInterval: time.Minute}
}

// SyncProcessor periodically drains unsynced spend. It backs up the AMQP
// path for messages lost while the broker or worker was down.
type SyncProcessor struct {
	exporter PendingExporter
	config   SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(exporter PendingExporter, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	return &SyncProcessor{exporter: exporter, config: config}
}

// Start runs one pass immediately, then one per PollInterval.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	if p.exporter == nil {
		p.mu.Unlock()
		return fmt.Errorf("sync processor has no exporter")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx, p.stopCh, p.doneCh)

	slog.InfoContext(ctx, "Sync processor started", "poll_interval", p.config.PollInterval)
	return nil
}

// Stop signals the loop and waits for it, or for ctx to expire.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.runOnce(ctx)
	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *SyncProcessor) runOnce(ctx context.Context) {
	n, err := p.exporter.ProcessPendingSpends(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Backfill pass failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Backfill pass exported spend", "count", n)
	}
}
