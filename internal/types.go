package internal

// RawRecord is one scraped listing exactly as the dataset API returned it.
// No schema is enforced: values may be objects, arrays, JSON-encoded strings
// or plain scalars, and any key may be absent.
type RawRecord map[string]any

// AttributeEntry is one name/value pair decoded from a record's attributes
// field. Value keeps its decoded shape (scalar or array).
type AttributeEntry struct {
	Name  string
	Value any
}

// MappingEntry routes one source field to up to two destination columns.
type MappingEntry struct {
	Source string
	Dests  []string
}

// RenameRule renames a Shopify column in the final (slimmed) output shape.
type RenameRule struct {
	ShopifyColumn string
	RenamedKey    string
}

type DatasetRow struct {
	ID          string
	ActorRunID  string
	Status      string
	RecordCount int
	FetchedAt   string
}

type ExportLogRow struct {
	ID        int
	DatasetID string
	Shape     string
	Format    string
	Path      string
	RowCount  int
	CreatedAt string
}
