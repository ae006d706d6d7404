package scrape

import (
	"context"
	"time"

	"carvan/internal"
	"carvan/internal/config"
	"carvan/internal/storage"
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

// RunAndStore starts a scrape run, waits for it and stores the fetched
// dataset locally so exports can re-run without re-scraping.
func (s *SyncService) RunAndStore(ctx context.Context) (internal.DatasetRow, error) {
	run, err := s.client.StartRun(ctx)
	if err != nil {
		return internal.DatasetRow{}, err
	}

	run, err = s.client.WaitForRun(ctx, run.ID)
	if err != nil {
		return internal.DatasetRow{}, err
	}

	records, err := s.client.FetchDatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return internal.DatasetRow{}, err
	}

	ds := internal.DatasetRow{
		ID:          run.DefaultDatasetID,
		ActorRunID:  run.ID,
		Status:      "fetched",
		RecordCount: len(records),
	}
	if err := s.db.InsertDataset(ds, records); err != nil {
		return internal.DatasetRow{}, err
	}

	_ = s.db.SetMetadata("scrape.last_run", time.Now().UTC().Format(time.RFC3339))
	return ds, nil
}
