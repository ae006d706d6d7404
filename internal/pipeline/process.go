package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"carvan/internal"
	"carvan/internal/config"
	"carvan/internal/mapping"
	"carvan/internal/storage"
)

const (
	ShapeMetafields = "metafields"
	ShapeFinal      = "final"
	ShapeNormalized = "normalized"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ProcessingService converts stored raw listings into import rows and writes
// them out. Each record converts independently; the service keeps no
// per-request state, so results always come straight from the inputs.
type ProcessingService struct {
	db    *storage.DB
	cfg   config.Config
	table *mapping.Table
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, table: mapping.LoadTable(cfg.MetafieldsMappingPath)}
}

// ReloadMapping re-reads the metafields mapping sheet.
func (s *ProcessingService) ReloadMapping() int {
	return s.table.Reload()
}

// ConvertRecords maps every raw record to a full metafield row.
func ConvertRecords(records []internal.RawRecord, entries []internal.MappingEntry) []*Row {
	out := make([]*Row, 0, len(records))
	for _, rec := range records {
		out = append(out, BuildMetafieldRow(rec, entries))
	}
	return out
}

// NormalizedRows maps every raw record to the lowercase normalized shape.
func NormalizedRows(records []internal.RawRecord) []*Row {
	out := make([]*Row, 0, len(records))
	for _, rec := range records {
		out = append(out, NormalizeRecord(rec).Row())
	}
	return out
}

// ApplyFinalShape restricts a full row to the renamed output contract:
// renamed columns are emitted under their new key, always-keep columns
// survive as-is, everything else is dropped.
func ApplyFinalShape(row *Row, rules []internal.RenameRule) *Row {
	renames := make(map[string]string, len(rules))
	for _, r := range rules {
		renames[r.ShopifyColumn] = r.RenamedKey
	}

	out := NewRow()
	for _, key := range row.Keys() {
		if renamed, ok := renames[key]; ok {
			out.Set(renamed, row.Get(key))
			continue
		}
		if _, ok := mapping.AlwaysKeep[key]; ok {
			out.Set(key, row.Get(key))
		}
	}
	return out
}

// ConvertDataset loads a dataset's records and produces rows in the requested
// shape. The final shape additionally needs the rename table, whose absence
// is a configuration error.
func (s *ProcessingService) ConvertDataset(datasetID, shape string) ([]*Row, error) {
	records, err := s.db.ListRecords(datasetID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records stored for dataset %s", datasetID)
	}

	switch shape {
	case ShapeNormalized:
		return NormalizedRows(records), nil
	case ShapeMetafields:
		return ConvertRecords(records, s.table.Entries()), nil
	case ShapeFinal:
		rules, err := mapping.LoadRenameTable(s.cfg.MappingFilePath)
		if err != nil {
			return nil, err
		}
		rows := ConvertRecords(records, s.table.Entries())
		out := make([]*Row, 0, len(rows))
		for _, row := range rows {
			out = append(out, ApplyFinalShape(row, rules))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported shape: %s", shape)
	}
}

// ExportDataset converts a dataset and writes it as CSV or XLSX, logging the
// export in storage.
func (s *ProcessingService) ExportDataset(datasetID, shape, format, outputPath string) (int, error) {
	rows, err := s.ConvertDataset(datasetID, shape)
	if err != nil {
		return 0, err
	}

	var blob []byte
	switch format {
	case FormatCSV:
		blob = []byte(EncodeCSV(rows))
	case FormatXLSX:
		blob, err = EncodeXLSX(rows)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unsupported format: %s", format)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(outputPath, blob, 0o644); err != nil {
		return 0, err
	}

	if err := s.db.InsertExport(datasetID, shape, format, outputPath, len(rows)); err != nil {
		return 0, err
	}
	return len(rows), nil
}
