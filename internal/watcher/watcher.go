package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"carvan/internal/config"
	"carvan/internal/pipeline"
	"carvan/internal/scrape"
	"carvan/internal/storage"
)

// Service periodically runs the scraper and, when configured, exports the
// fresh dataset right away.
type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.ProcessingService
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg, processor: pipeline.NewProcessingService(db, cfg)}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("watch cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.WatchIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	sync := scrape.NewSyncService(s.db, s.cfg)
	ds, err := sync.RunAndStore(ctx)
	if err != nil {
		return err
	}

	if !s.cfg.WatchAutoExport {
		fmt.Printf("watch cycle done dataset=%s records=%d\n", ds.ID, ds.RecordCount)
		return nil
	}

	shape := pipeline.ShapeMetafields
	if s.cfg.WatchFinalShape {
		shape = pipeline.ShapeFinal
	}

	// The mapping sheet may change between cycles; pick up edits without a restart.
	s.processor.ReloadMapping()

	filename := fmt.Sprintf("%s_%s.%s", ds.ID, time.Now().UTC().Format("20060102T150405"), s.cfg.WatchFormat)
	outputPath := filepath.Join(s.cfg.OutputDir, "watch", filename)
	count, err := s.processor.ExportDataset(ds.ID, shape, s.cfg.WatchFormat, outputPath)
	if err != nil {
		return err
	}

	fmt.Printf("watch cycle done dataset=%s records=%d exported=%d output=%s\n", ds.ID, ds.RecordCount, count, outputPath)
	return nil
}
