package mapping

import "carvan/internal"

// Table holds the metafields mapping for the process lifetime. Reload swaps
// the whole slice at once; there is no partial mutation, so concurrent
// readers only ever see a complete table and no lock is needed.
type Table struct {
	path    string
	entries []internal.MappingEntry
}

func LoadTable(path string) *Table {
	t := &Table{path: path}
	t.Reload()
	return t
}

// Reload re-reads the mapping sheet and replaces the table wholesale.
// Returns the new entry count.
func (t *Table) Reload() int {
	t.entries = LoadMetafieldEntries(t.path)
	return len(t.entries)
}

func (t *Table) Entries() []internal.MappingEntry {
	return t.entries
}
