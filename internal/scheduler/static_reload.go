// Package scheduler runs the periodic background jobs of the router.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/edgegate/internal/logger"
	"github.com/MrSnakeDoc/edgegate/internal/sources/static"
)

// StaticReloader periodically re-reads the static mappings file so
// edits land without a restart. A manual trigger channel forces an
// immediate reload (wired to the internal reload endpoint).
type StaticReloader struct {
	loader        *static.Loader
	source        *static.Source
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewStaticReloader creates a reloader for the given mappings file.
func NewStaticReloader(
	filePath string,
	source *static.Source,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *StaticReloader {
	return &StaticReloader{
		loader:        static.NewLoader(filePath),
		source:        source,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the file once (failing fast on a broken initial config)
// and begins the periodic reload loop.
func (sr *StaticReloader) Start(ctx context.Context) error {
	if err := sr.Reload(); err != nil {
		return fmt.Errorf("initial static mappings load failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(); err != nil {
					sr.logger.Error("failed to reload static mappings",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual static mappings reload triggered")
				if err := sr.Reload(); err != nil {
					sr.logger.Error("failed to reload static mappings",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (sr *StaticReloader) Stop() {
	close(sr.stopCh)
}

// Reload re-reads the file and swaps the source's file-backed set. A
// failed load keeps the previous set in place, so a bad edit never
// drops tenants that were already being served.
func (sr *StaticReloader) Reload() error {
	mappings, err := sr.loader.Load()
	if err != nil {
		return err
	}

	sr.source.ReplaceFile(mappings)
	sr.logger.Info("static mappings reloaded",
		logger.Int("count", len(mappings)))
	return nil
}
