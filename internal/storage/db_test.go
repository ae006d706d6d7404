package storage

import (
	"path/filepath"
	"testing"

	"carvan/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "carvan.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertDatasetRoundTrip(t *testing.T) {
	db := openTestDB(t)

	records := []internal.RawRecord{
		{"id": float64(101), "title": "BMW Seria 3"},
		{"id": "202", "title": "Dacia Logan"},
	}
	ds := internal.DatasetRow{ID: "ds1", ActorRunID: "run1", Status: "fetched"}
	if err := db.InsertDataset(ds, records); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListRecords("ds1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("records=%d", len(got))
	}
	if got[0]["title"] != "BMW Seria 3" || got[1]["title"] != "Dacia Logan" {
		t.Fatalf("records out of order: %v", got)
	}
}

func TestInsertDatasetReplacesListings(t *testing.T) {
	db := openTestDB(t)
	ds := internal.DatasetRow{ID: "ds1", ActorRunID: "run1", Status: "fetched"}

	if err := db.InsertDataset(ds, []internal.RawRecord{{"id": "1"}, {"id": "2"}, {"id": "3"}}); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertDataset(ds, []internal.RawRecord{{"id": "9"}}); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListRecords("ds1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("records=%d, re-fetch should replace", len(got))
	}

	latest, err := db.LatestDataset()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.ID != "ds1" || latest.RecordCount != 1 {
		t.Fatalf("latest=%+v", latest)
	}
}

func TestLatestDatasetEmpty(t *testing.T) {
	db := openTestDB(t)
	latest, err := db.LatestDataset()
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Fatalf("latest=%+v", latest)
	}
}

func TestListDatasets(t *testing.T) {
	db := openTestDB(t)
	for _, id := range []string{"ds1", "ds2"} {
		ds := internal.DatasetRow{ID: id, ActorRunID: "run-" + id, Status: "fetched"}
		if err := db.InsertDataset(ds, nil); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListDatasets(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("datasets=%d", len(got))
	}
	if got[0].ID != "ds2" {
		t.Fatalf("newest first, got %s", got[0].ID)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetMetadata("scrape.last_run")
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("value=%v", *v)
	}

	if err := db.SetMetadata("scrape.last_run", "run1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("scrape.last_run", "run2"); err != nil {
		t.Fatal(err)
	}

	v, err = db.GetMetadata("scrape.last_run")
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || *v != "run2" {
		t.Fatalf("value=%v", v)
	}
}

func TestInsertExport(t *testing.T) {
	db := openTestDB(t)
	ds := internal.DatasetRow{ID: "ds1", ActorRunID: "run1", Status: "fetched"}
	if err := db.InsertDataset(ds, nil); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertExport("ds1", "metafields", "csv", "/tmp/out.csv", 12); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertExport("ds1", "final", "xlsx", "/tmp/out.xlsx", 12); err != nil {
		t.Fatal(err)
	}

	exports, err := db.ListExports(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(exports) != 2 {
		t.Fatalf("exports=%d", len(exports))
	}
	if exports[0].Shape != "final" {
		t.Fatalf("newest first, got %+v", exports[0])
	}
	if exports[1].Format != "csv" || exports[1].RowCount != 12 {
		t.Fatalf("export row: %+v", exports[1])
	}
}
