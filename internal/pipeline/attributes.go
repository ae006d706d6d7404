package pipeline

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"carvan/internal"
	"carvan/internal/translate"
	"carvan/internal/util"
)

var leadingNumberRun = regexp.MustCompile(`^[0-9][0-9,./]*`)

// ExpandAttributeColumns turns the free-form attribute list into one column
// per translated attribute name, each holding a single shortened value. The
// first attribute with a given display name wins; later duplicates are
// dropped silently.
func ExpandAttributeColumns(rec internal.RawRecord) *Row {
	out := NewRow()
	for _, entry := range attributeEntriesForExpansion(rec) {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		name := translate.AttributeName(entry.Name)
		if out.Has(name) {
			continue
		}
		value := ShortenValue(entry.Value)
		if !translate.IsColourAttribute(entry.Name) && !translate.IsColourAttribute(name) {
			value = translate.Value(value)
		}
		out.Set(name, value)
	}
	return out
}

// attributeEntriesForExpansion prefers an object-shaped attributes field over
// every other decoding: a plain object (or a JSON string holding one) maps
// directly to entries, sorted by key for a stable column order. Anything else
// falls back to the shared three-way decode.
func attributeEntriesForExpansion(rec internal.RawRecord) []internal.AttributeEntry {
	if m := attributeObject(rec["attributes"]); m != nil {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]internal.AttributeEntry, 0, len(keys))
		for _, k := range keys {
			out = append(out, internal.AttributeEntry{Name: k, Value: m[k]})
		}
		return out
	}
	return decodeAttributeEntries(rec)
}

// attributeObject unwraps a plain-object attributes field, tolerating a JSON
// string encoding. Arrays of name/value objects are not a plain object and
// return nil.
func attributeObject(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case string:
		s := strings.TrimSpace(v)
		if !strings.HasPrefix(s, "{") {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil
		}
		return m
	default:
		return nil
	}
}

// ShortenValue reduces an attribute value to a compact display token. The
// steps run in a fixed order: arrays collapse to their first element; values
// starting with a digit keep a numeric or alphanumeric lead token; a comma
// that introduces a non-numeric phrase cuts the value at the phrase; anything
// else keeps its first word.
func ShortenValue(value any) string {
	if list, ok := value.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		value = list[0]
	}

	s := strings.TrimSpace(util.Stringify(value))
	if s == "" {
		return ""
	}

	if s[0] >= '0' && s[0] <= '9' {
		token := util.FirstWord(s)
		if util.HasLetter(token) {
			return token
		}
		if run := leadingNumberRun.FindString(s); run != "" {
			return run
		}
		return token
	}

	if before, after, found := strings.Cut(s, ","); found {
		rest := strings.TrimSpace(after)
		if rest == "" || rest[0] < '0' || rest[0] > '9' {
			if word := util.FirstWord(before); word != "" {
				return word
			}
		}
	}

	return util.FirstWord(s)
}
