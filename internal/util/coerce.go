package util

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRuns    = regexp.MustCompile(`[0-9]+`)
	listSplitter = regexp.MustCompile(`\s*[;,]\s*`)
	powerMetric  = regexp.MustCompile(`(?i)([0-9]{2,4})\s*kw`)
	powerImp     = regexp.MustCompile(`(?i)\(\s*([0-9]{2,4})\s*(?:hp|cp)\s*\)`)
	parenGroups  = regexp.MustCompile(`\([^)]*\)`)
)

// CoerceToList turns an ambiguous value into a list. Arrays pass through,
// JSON-encoded strings are decoded, delimited strings are split on ";" or ",",
// anything else becomes a one-element list. Nil and blank input yield an
// empty list. Never fails.
func CoerceToList(value any) []any {
	switch v := value.(type) {
	case nil:
		return []any{}
	case []any:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return []any{}
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			if list, ok := decoded.([]any); ok {
				return list
			}
			return []any{decoded}
		}
		if strings.ContainsAny(s, ";,") {
			parts := listSplitter.Split(s, -1)
			out := make([]any, 0, len(parts))
			for _, p := range parts {
				out = append(out, p)
			}
			return out
		}
		return []any{s}
	default:
		return []any{value}
	}
}

// ExtractDigits concatenates every run of decimal digits in the string form
// of value, in order of occurrence.
func ExtractDigits(value any) string {
	s := Stringify(value)
	if s == "" {
		return ""
	}
	return strings.Join(digitRuns.FindAllString(s, -1), "")
}

type PowerUnit string

const (
	PowerMetric   PowerUnit = "metric"
	PowerImperial PowerUnit = "imperial"
)

// ExtractPower pulls one side of a paired power rating like "195 kW (265 hp)".
// The metric number is matched outside parentheses, the imperial number inside.
// Returns "" when the requested pattern is absent.
func ExtractPower(value any, unit PowerUnit) string {
	s := Stringify(value)
	if s == "" {
		return ""
	}
	switch unit {
	case PowerMetric:
		outside := parenGroups.ReplaceAllString(s, " ")
		if m := powerMetric.FindStringSubmatch(outside); m != nil {
			return m[1]
		}
	case PowerImperial:
		if m := powerImp.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// Stringify renders any scalar as its display string. Composite values are
// JSON-serialized so nothing is ever lost to a "%v" of a map.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		blob, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(blob)
	}
}

// MustJSON serializes value, degrading to "[]" instead of failing.
func MustJSON(value any) string {
	blob, err := json.Marshal(value)
	if err != nil {
		return "[]"
	}
	return string(blob)
}
