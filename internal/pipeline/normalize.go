package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"carvan/internal"
	"carvan/internal/util"
)

const indexedFieldCount = 10

var (
	priceToken    = regexp.MustCompile(`[0-9][0-9.,]*`)
	currencyToken = regexp.MustCompile(`(?i)(€|\$|£|RON|EUR|USD|GBP)`)
	attrPairSplit = regexp.MustCompile(`\s*[;|]\s*`)
)

// NormalizedItem is the flat, all-string view of one raw listing. Every field
// is a scalar string or a JSON-encoded string; nothing nested survives.
type NormalizedItem struct {
	Title         string
	URL           string
	PreviewImage  string
	PriceAmount   string
	PriceCurrency string

	ImagesJSON string
	Images     [indexedFieldCount]string

	FeaturesJSON string
	Features     [indexedFieldCount]string

	AttributesJSON  string
	AttributeNames  [indexedFieldCount]string
	AttributeValues [indexedFieldCount]string

	DealerName  string
	DealerCity  string
	DealerPhone string

	SourceID string
	SellerID string
	Segment  string
	Category string
	Rank     string
}

// NormalizeRecord flattens one raw listing. It never fails: every branch
// degrades to an empty string when the source shape is missing or malformed.
func NormalizeRecord(rec internal.RawRecord) NormalizedItem {
	item := NormalizedItem{
		Title:    util.Stringify(rec["title"]),
		URL:      util.Stringify(rec["url"]),
		SourceID: util.Stringify(rec["id"]),
		SellerID: util.Stringify(rec["sellerId"]),
		Segment:  util.Stringify(rec["segment"]),
		Category: util.Stringify(rec["category"]),
		Rank:     util.Stringify(rec["rank"]),
	}

	item.PriceAmount, item.PriceCurrency = decodePrice(rec["price"])

	images := util.CoerceToList(rec["images"])
	if len(images) > 0 {
		item.ImagesJSON = util.MustJSON(images)
	}
	for i, el := range images {
		if i >= indexedFieldCount {
			break
		}
		item.Images[i] = displayString(el)
	}

	item.PreviewImage = util.Stringify(rec["previewImage"])
	if item.PreviewImage == "" && len(images) > 0 {
		item.PreviewImage = displayString(images[0])
	}

	features := util.CoerceToList(rec["features"])
	if len(features) > 0 {
		item.FeaturesJSON = util.MustJSON(features)
	}
	for i, el := range features {
		if i >= indexedFieldCount {
			break
		}
		item.Features[i] = displayString(el)
	}

	attrs := decodeAttributeEntries(rec)
	if len(attrs) > 0 {
		item.AttributesJSON = util.MustJSON(rec["attributes"])
	}
	for i, a := range attrs {
		if i >= indexedFieldCount {
			break
		}
		item.AttributeNames[i] = a.Name
		item.AttributeValues[i] = util.Stringify(a.Value)
	}

	item.DealerName, item.DealerCity, item.DealerPhone = decodeDealer(rec["dealerDetails"])

	return item
}

// Row renders the item as an export row with the lowercase column contract.
func (n NormalizedItem) Row() *Row {
	row := NewRow()
	row.Set("title", n.Title)
	row.Set("url", n.URL)
	row.Set("preview_image", n.PreviewImage)
	row.Set("price_amount", n.PriceAmount)
	row.Set("price_currency", n.PriceCurrency)
	row.Set("images_json", n.ImagesJSON)
	for i := 0; i < indexedFieldCount; i++ {
		row.Set(fmt.Sprintf("image_%d", i+1), n.Images[i])
	}
	row.Set("features_json", n.FeaturesJSON)
	for i := 0; i < indexedFieldCount; i++ {
		row.Set(fmt.Sprintf("feature_%d", i+1), n.Features[i])
	}
	row.Set("attributes_json", n.AttributesJSON)
	for i := 0; i < indexedFieldCount; i++ {
		row.Set(fmt.Sprintf("attribute_%d_name", i+1), n.AttributeNames[i])
		row.Set(fmt.Sprintf("attribute_%d_value", i+1), n.AttributeValues[i])
	}
	row.Set("dealer_name", n.DealerName)
	row.Set("dealer_city", n.DealerCity)
	row.Set("dealer_phone", n.DealerPhone)
	row.Set("source_id", n.SourceID)
	row.Set("seller_id", n.SellerID)
	row.Set("segment", n.Segment)
	row.Set("category", n.Category)
	row.Set("rank", n.Rank)
	return row
}

func decodePrice(value any) (amount, currency string) {
	switch v := value.(type) {
	case map[string]any:
		amount = util.Stringify(v["amount"])
		if amount == "" {
			amount = util.Stringify(v["value"])
		}
		currency = util.Stringify(v["currency"])
	case string:
		if m := priceToken.FindString(v); m != "" {
			amount = m
		}
		if m := currencyToken.FindString(v); m != "" {
			currency = m
		}
	}
	return amount, currency
}

// displayString reduces a decoded list element to a URL or display string.
func displayString(el any) string {
	m, ok := el.(map[string]any)
	if !ok {
		return util.Stringify(el)
	}
	for _, key := range []string{"url", "src", "name", "title"} {
		if s := util.Stringify(m[key]); s != "" {
			return s
		}
	}
	return util.Stringify(m)
}

// decodeAttributeEntries funnels the three supported attribute shapes into
// name/value pairs: array of objects carrying name/key, plain object, or a
// ";"/"|" delimited string of "name: value" pieces.
func decodeAttributeEntries(rec internal.RawRecord) []internal.AttributeEntry {
	list := util.CoerceToList(rec["attributes"])
	if len(list) == 0 {
		return nil
	}

	if first, ok := list[0].(map[string]any); ok {
		if _, hasName := first["name"]; hasName || hasKey(first) {
			out := make([]internal.AttributeEntry, 0, len(list))
			for _, el := range list {
				m, ok := el.(map[string]any)
				if !ok {
					continue
				}
				name := util.Stringify(m["name"])
				if name == "" {
					name = util.Stringify(m["key"])
				}
				out = append(out, internal.AttributeEntry{Name: name, Value: m["value"]})
			}
			return out
		}
	}

	out := make([]internal.AttributeEntry, 0, len(list))
	for _, el := range list {
		s, ok := el.(string)
		if !ok {
			continue
		}
		for _, piece := range attrPairSplit.Split(s, -1) {
			name, value, _ := strings.Cut(piece, ":")
			name = strings.TrimSpace(name)
			value = strings.TrimSpace(value)
			if name == "" && value == "" {
				continue
			}
			out = append(out, internal.AttributeEntry{Name: name, Value: value})
		}
	}
	return out
}

func hasKey(m map[string]any) bool {
	_, ok := m["key"]
	return ok
}

func decodeDealer(value any) (name, city, phone string) {
	var m map[string]any
	switch v := value.(type) {
	case map[string]any:
		m = v
	case string:
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return "", "", ""
		}
	default:
		return "", "", ""
	}
	return util.Stringify(m["name"]), util.Stringify(m["city"]), util.Stringify(m["phone"])
}
