package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"carvan/internal"
	"carvan/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS datasets (
  id TEXT PRIMARY KEY,
  actorRunId TEXT,
  status TEXT NOT NULL DEFAULT 'fetched',
  recordCount INTEGER NOT NULL DEFAULT 0,
  fetchedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS listings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  datasetId TEXT NOT NULL,
  sourceId TEXT,
  raw_json TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(datasetId) REFERENCES datasets(id)
);
CREATE INDEX IF NOT EXISTS idx_listings_dataset ON listings(datasetId);
CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(sourceId);

CREATE TABLE IF NOT EXISTS exports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  datasetId TEXT NOT NULL,
  shape TEXT NOT NULL,
  format TEXT NOT NULL,
  path TEXT NOT NULL,
  rowCount INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(datasetId) REFERENCES datasets(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertDataset records one fetched dataset run and replaces its listings.
func (d *DB) InsertDataset(ds internal.DatasetRow, records []internal.RawRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
INSERT INTO datasets (id, actorRunId, status, recordCount, fetchedAt)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  actorRunId=excluded.actorRunId,
  status=excluded.status,
  recordCount=excluded.recordCount,
  fetchedAt=CURRENT_TIMESTAMP`,
		ds.ID, ds.ActorRunID, ds.Status, len(records)); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM listings WHERE datasetId = ?`, ds.ID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO listings (datasetId, sourceId, raw_json) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		blob, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		if _, err := stmt.Exec(ds.ID, util.Stringify(rec["id"]), string(blob)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRecords returns every stored raw listing of a dataset in insert order.
func (d *DB) ListRecords(datasetID string) ([]internal.RawRecord, error) {
	rows, err := d.conn.Query(`SELECT raw_json FROM listings WHERE datasetId = ? ORDER BY id`, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.RawRecord{}
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var rec internal.RawRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) LatestDataset() (*internal.DatasetRow, error) {
	row := d.conn.QueryRow(`SELECT id, actorRunId, status, recordCount, fetchedAt FROM datasets ORDER BY fetchedAt DESC, id DESC LIMIT 1`)
	var ds internal.DatasetRow
	if err := row.Scan(&ds.ID, &ds.ActorRunID, &ds.Status, &ds.RecordCount, &ds.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ds, nil
}

func (d *DB) ListDatasets(limit int) ([]internal.DatasetRow, error) {
	rows, err := d.conn.Query(`SELECT id, actorRunId, status, recordCount, fetchedAt FROM datasets ORDER BY fetchedAt DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.DatasetRow{}
	for rows.Next() {
		var ds internal.DatasetRow
		if err := rows.Scan(&ds.ID, &ds.ActorRunID, &ds.Status, &ds.RecordCount, &ds.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

func (d *DB) InsertExport(datasetID, shape, format, path string, rowCount int) error {
	_, err := d.conn.Exec(`INSERT INTO exports (datasetId, shape, format, path, rowCount) VALUES (?, ?, ?, ?, ?)`,
		datasetID, shape, format, path, rowCount)
	return err
}

func (d *DB) ListExports(limit int) ([]internal.ExportLogRow, error) {
	rows, err := d.conn.Query(`SELECT id, datasetId, shape, format, path, rowCount, createdAt FROM exports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.ExportLogRow{}
	for rows.Next() {
		var e internal.ExportLogRow
		if err := rows.Scan(&e.ID, &e.DatasetID, &e.Shape, &e.Format, &e.Path, &e.RowCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	row := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &value, nil
}
