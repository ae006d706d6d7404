// Package mapping loads the source→destination column tables that drive the
// row builder and the final renamed output shape.
package mapping

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"carvan/internal"
)

// MetafieldsSheetName is the sheet the metafields mapping is read from.
const MetafieldsSheetName = "Metafields"

const sourceHeaderPrefix = "source"

// AlwaysKeep lists columns that survive the final rename/filter even when the
// rename table does not mention them.
var AlwaysKeep = map[string]struct{}{
	"Handle":          {},
	"Title":           {},
	"Body HTML":       {},
	"Vendor":          {},
	"Tags":            {},
	"Variant SKU":     {},
	"Variant Price":   {},
	"Image Src":       {},
	"Image Alt Text":  {},
	"Template Suffix": {},
}

// LoadRenameTable reads the rename/filter table: a sheet whose header row
// carries columns literally named "Shopify" and "Source". A missing header is
// a configuration error; this loader runs once at startup and must not
// degrade silently.
func LoadRenameTable(path string) ([]internal.RenameRule, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping file %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read mapping file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("mapping file %s: empty sheet", path)
	}

	shopifyIdx, sourceIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "shopify":
			shopifyIdx = i
		case "source":
			sourceIdx = i
		}
	}
	if shopifyIdx < 0 {
		return nil, fmt.Errorf("mapping file %s: missing %q header column", path, "Shopify")
	}
	if sourceIdx < 0 {
		return nil, fmt.Errorf("mapping file %s: missing %q header column", path, "Source")
	}

	out := make([]internal.RenameRule, 0, len(rows)-1)
	for _, row := range rows[1:] {
		shopify := pickCell(row, shopifyIdx)
		source := pickCell(row, sourceIdx)
		if shopify == "" || source == "" {
			continue
		}
		out = append(out, internal.RenameRule{ShopifyColumn: shopify, RenamedKey: source})
	}
	return out, nil
}

// LoadMetafieldEntries reads the metafields mapping sheet: one source column
// whose header starts with "Source" and up to two destination columns whose
// headers contain "Shopify". A missing file or sheet is not an error — the
// mapping just becomes empty and the builder's fixed columns still populate.
func LoadMetafieldEntries(path string) []internal.MappingEntry {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	rows, err := f.GetRows(MetafieldsSheetName)
	if err != nil || len(rows) == 0 {
		return nil
	}

	sourceIdx := -1
	destIdx := []int{}
	for i, h := range rows[0] {
		norm := strings.ToLower(strings.TrimSpace(h))
		if strings.HasPrefix(norm, sourceHeaderPrefix) && sourceIdx < 0 {
			sourceIdx = i
			continue
		}
		if strings.Contains(norm, "shopify") && len(destIdx) < 2 {
			destIdx = append(destIdx, i)
		}
	}
	if sourceIdx < 0 || len(destIdx) == 0 {
		return nil
	}

	out := make([]internal.MappingEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		source := pickCell(row, sourceIdx)
		if source == "" {
			continue
		}
		dests := make([]string, 0, len(destIdx))
		for _, idx := range destIdx {
			if dest := pickCell(row, idx); dest != "" {
				dests = append(dests, dest)
			}
		}
		if len(dests) == 0 {
			continue
		}
		out = append(out, internal.MappingEntry{Source: source, Dests: dests})
	}
	return out
}

func pickCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
