package pipeline

import (
	"fmt"
	"strings"

	"carvan/internal"
	"carvan/internal/translate"
	"carvan/internal/util"
)

const (
	ColTitle           = "Title"
	ColHandle          = "Handle"
	ColVariantSKU      = "Variant SKU"
	ColVariantID       = "Variant ID"
	ColVariantPrice    = "Variant Price"
	ColVendor          = "Vendor"
	ColImageSrc        = "Image Src"
	ColImageAlt        = "Image Alt Text"
	ColTags            = "Tags"
	ColBodyHTML        = "Body HTML"
	ColFeatures        = "Features"
	ColDealer          = "dealerDetails"
	ColCarURL          = "Car Url"
	ColPriceWithoutVAT = "price/withoutVAT/amount"
	ColTemplateSuffix  = "Template Suffix"

	ColMetaBrand   = "Metafield: custom.marca"
	ColMetaModel   = "Metafield: custom.model"
	ColMetaPowerKW = "Metafield: custom.putere_kw"
	ColMetaPowerHP = "Metafield: custom.putere_cp"
	ColMetaDrive   = "Metafield: custom.tractiune"
	ColMetaTax     = "Metafield: custom.clasa_tva"

	taxClassification = "TVA inclus 21%"
	templateSuffix    = "vehicul"
)

// Drive-train phrases are matched literally against feature strings; the
// first matching feature in scan order decides the value.
var driveTrainPhrases = []struct {
	phrase string
	value  string
}{
	{"rear wheel drive", "Spate"},
	{"front wheel drive", "Fata"},
	{"four-wheel drive", "Integrala"},
	{"four wheel drive", "Integrala"},
}

// BuildMetafieldRow synthesizes the full import row for one raw listing.
// Steps run in a fixed order; later steps may overwrite earlier ones except
// where they explicitly keep an existing value. No input shape makes it fail.
func BuildMetafieldRow(rec internal.RawRecord, entries []internal.MappingEntry) *Row {
	row := NewRow()
	tags := newTagSet()

	// Mapped source→destination columns.
	for _, entry := range entries {
		value := util.Stringify(rec[entry.Source])
		if strings.TrimSpace(value) == "" {
			continue
		}
		for _, dest := range entry.Dests {
			switch {
			case dest == ColTags:
				tags.Add(value)
			case strings.HasPrefix(dest, "Metafield") && isPowerSource(entry.Source):
				if strings.Contains(dest, "putere_cp") {
					row.Set(dest, util.ExtractPower(value, util.PowerImperial))
				} else if strings.Contains(dest, "putere_kw") {
					row.Set(dest, util.ExtractPower(value, util.PowerMetric))
				} else {
					row.Set(dest, value)
				}
			default:
				row.Set(dest, value)
			}
		}
	}

	if brand := util.Stringify(rec["brand"]); brand != "" {
		row.Set(ColMetaBrand, brand)
		tags.Add(brand)
	}
	if model := util.Stringify(rec["model"]); model != "" {
		row.Set(ColMetaModel, model)
		tags.Add(model)
	}

	title := util.Stringify(rec["title"])
	id := util.Stringify(rec["id"])

	row.Set(ColTitle, title)
	row.Set(ColHandle, util.Slugify(title, id))
	row.Set(ColVariantSKU, id)
	row.Set(ColVariantID, id)

	if price, ok := variantPrice(rec); ok {
		row.Set(ColVariantPrice, price)
	} else if !row.Has(ColVariantPrice) {
		row.Set(ColVariantPrice, "")
	}

	if row.Get(ColVendor) == "" {
		row.Set(ColVendor, util.Stringify(rec["sellerId"]))
	}

	row.Set(ColImageSrc, firstImage(rec))

	if row.Get(ColImageAlt) == "" {
		row.Set(ColImageAlt, title)
	}

	row.Set(ColTags, tags.Join(", "))

	attrs := decodeAttributeEntries(rec)
	features := featureStrings(rec)

	row.Set(ColBodyHTML, buildBodyHTML(attrs, features))
	row.Set(ColFeatures, featureList(features))

	expanded := ExpandAttributeColumns(rec)
	for _, key := range expanded.Keys() {
		if !row.Has(key) {
			row.Set(key, expanded.Get(key))
		}
	}

	dealerName, _, _ := decodeDealer(rec["dealerDetails"])
	row.Set(ColDealer, dealerName)
	row.Set(ColCarURL, util.Stringify(rec["url"]))

	// Explicitly excluded from the output contract.
	row.Delete(ColVariantID)
	for _, key := range append([]string(nil), row.Keys()...) {
		if strings.Contains(key, "ITP") {
			row.Delete(key)
		}
	}

	netAmount := lookupPath(rec, "price", "withoutVAT", "amount")
	if netAmount == "" {
		netAmount = util.Stringify(rec["price/withoutVAT/amount"])
	}
	row.Set(ColPriceWithoutVAT, netAmount)

	// Authoritative power split: recomputed from the Power attribute,
	// overwriting whatever the mapping assigned.
	power := powerAttributeValue(attrs)
	row.Set(ColMetaPowerKW, util.ExtractPower(power, util.PowerMetric))
	row.Set(ColMetaPowerHP, util.ExtractPower(power, util.PowerImperial))

	if drive := driveTrain(rec, features); drive != "" {
		row.Set(ColMetaDrive, drive)
	}

	row.Set(ColMetaTax, taxClassification)
	row.Set(ColTemplateSuffix, templateSuffix)

	return row
}

func isPowerSource(source string) bool {
	return strings.Contains(strings.ToLower(source), "power")
}

// featureStrings decodes the unified features field to display strings.
func featureStrings(rec internal.RawRecord) []string {
	list := util.CoerceToList(rec["features"])
	out := make([]string, 0, len(list))
	for _, el := range list {
		if s := strings.TrimSpace(displayString(el)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstImage(rec internal.RawRecord) string {
	for i := 0; i < 50; i++ {
		if v, ok := rec[fmt.Sprintf("images/%d", i)]; ok {
			if s := util.Stringify(v); s != "" {
				return s
			}
		}
	}
	if list, ok := rec["images"].([]any); ok && len(list) > 0 {
		if m, ok := list[0].(map[string]any); ok {
			if s := util.Stringify(m["url"]); s != "" {
				return s
			}
			if s := util.Stringify(m["src"]); s != "" {
				return s
			}
			return util.Stringify(m)
		}
		return util.Stringify(list[0])
	}
	return ""
}

// buildBodyHTML renders the technical-data definition list and the equipment
// list, separated by a rule when both sections exist.
func buildBodyHTML(attrs []internal.AttributeEntry, features []string) string {
	sections := make([]string, 0, 2)

	if len(attrs) > 0 {
		var sb strings.Builder
		sb.WriteString("<h3>Date tehnice</h3><dl>")
		for _, a := range attrs {
			sb.WriteString("<dt>")
			sb.WriteString(translate.AttributeName(a.Name))
			sb.WriteString("</dt><dd>")
			sb.WriteString(translateAttributeValue(a.Name, a.Value))
			sb.WriteString("</dd>")
		}
		sb.WriteString("</dl>")
		sections = append(sections, sb.String())
	}

	if len(features) > 0 {
		sections = append(sections, "<h3>Dotari</h3>"+featureList(features))
	}

	return strings.Join(sections, "<hr/>")
}

func featureList(features []string) string {
	if len(features) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<ul>")
	for _, f := range features {
		sb.WriteString("<li>")
		sb.WriteString(translate.Value(f))
		sb.WriteString("</li>")
	}
	sb.WriteString("</ul>")
	return sb.String()
}

// translateAttributeValue applies value translation with the colour
// exemption. Array values translate element-wise; comma-separated values
// translate part-by-part when no whole-value translation exists.
func translateAttributeValue(name string, value any) string {
	colour := translate.IsColourAttribute(name) || translate.IsColourAttribute(translate.AttributeName(name))

	if list, ok := value.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, el := range list {
			s := util.Stringify(el)
			if !colour {
				s = translate.Value(s)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", ")
	}

	s := util.Stringify(value)
	if colour {
		return s
	}
	if translate.HasValue(s) {
		return translate.Value(s)
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		for i, p := range parts {
			parts[i] = translate.Value(strings.TrimSpace(p))
		}
		return strings.Join(parts, ", ")
	}
	return s
}

func powerAttributeValue(attrs []internal.AttributeEntry) string {
	for _, a := range attrs {
		if strings.EqualFold(strings.TrimSpace(a.Name), "power") {
			return util.Stringify(a.Value)
		}
	}
	return ""
}

// driveTrain scans the unified features field first, then the enumerated
// features/N keys. The first feature containing a known phrase wins.
func driveTrain(rec internal.RawRecord, features []string) string {
	scan := append([]string(nil), features...)
	for i := 0; i < 100; i++ {
		if v, ok := rec[fmt.Sprintf("features/%d", i)]; ok {
			if s := util.Stringify(v); s != "" {
				scan = append(scan, s)
			}
		}
	}

	for _, feature := range scan {
		lower := strings.ToLower(feature)
		for _, dt := range driveTrainPhrases {
			if strings.Contains(lower, dt.phrase) {
				return dt.value
			}
		}
	}
	return ""
}

type tagSet struct {
	seen map[string]struct{}
	tags []string
}

func newTagSet() *tagSet {
	return &tagSet{seen: map[string]struct{}{}}
}

func (t *tagSet) Add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	if _, ok := t.seen[tag]; ok {
		return
	}
	t.seen[tag] = struct{}{}
	t.tags = append(t.tags, tag)
}

func (t *tagSet) Join(sep string) string {
	return strings.Join(t.tags, sep)
}
